package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBoundaries(t *testing.T) {
	zones := []*time.Location{time.UTC, time.FixedZone("UTC+9", 9*3600), time.FixedZone("UTC-5", -5*3600)}
	instants := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 13, 45, 12, 345, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
	}

	for _, loc := range zones {
		for _, base := range instants {
			d := base.In(loc)
			start, end := StartOfDay(d), EndOfDay(d)

			assert.False(t, d.Before(start), "start after %s", d)
			assert.False(t, d.After(end), "end before %s", d)
			assert.Equal(t, int64(86399999), end.Sub(start).Milliseconds())
			assert.Equal(t, lastMillisecond, end.Sub(start))
			assert.Equal(t, loc, start.Location())
			assert.Equal(t, 0, start.Hour()+start.Minute()+start.Second()+start.Nanosecond())
		}
	}
}

func TestStartOfDayDiscardsTime(t *testing.T) {
	a := time.Date(2024, 5, 6, 1, 2, 3, 4, time.UTC)
	b := time.Date(2024, 5, 6, 22, 0, 0, 0, time.UTC)
	assert.True(t, StartOfDay(a).Equal(StartOfDay(b)))
	assert.True(t, EndOfDay(a).Equal(EndOfDay(b)))
}

func TestOverlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"self", Days(day(1), day(3)), Days(day(1), day(3)), true},
		{"single day self", Day(day(5)), Day(day(5)), true},
		{"touching", Days(day(1), day(3)), Days(day(3), day(4)), true},
		{"inside", Days(day(1), day(10)), Day(day(4)), true},
		{"before", Days(day(1), day(2)), Days(day(3), day(4)), false},
		{"after", Day(day(9)), Days(day(1), day(8)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	got, err := ParseDate("2024-01-02", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), got)

	got, err = ParseDate("2024-01-02T23:30:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", Format(got))

	_, err = ParseDate("", loc)
	assert.Error(t, err)
	_, err = ParseDate("02/01/2024", loc)
	assert.Error(t, err)
}
