package viewstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycle(t *testing.T) {
	m := New([]string{})
	assert.Equal(t, Idle, m.State().Phase)

	tk := m.Begin()
	assert.Equal(t, Loading, m.State().Phase)

	assert.True(t, m.Resolve(tk, []string{"a"}))
	s := m.State()
	assert.Equal(t, Ready, s.Phase)
	assert.Equal(t, []string{"a"}, s.Data)
	assert.NoError(t, s.Err)

	assert.False(t, m.Resolve(tk, []string{"b"}), "already settled")
}

func TestRejectUsesFallback(t *testing.T) {
	m := New([]string{})
	tk := m.Begin()
	boom := errors.New("boom")

	assert.True(t, m.Reject(tk, boom))
	s := m.State()
	assert.Equal(t, Failed, s.Phase)
	assert.Equal(t, []string{}, s.Data)
	assert.ErrorIs(t, s.Err, boom)
	assert.Equal(t, "error", s.Phase.String())
}

func TestStaleTicketIgnored(t *testing.T) {
	m := New(0)
	first := m.Begin()
	second := m.Begin()

	assert.False(t, m.Resolve(first, 1))
	assert.Equal(t, Loading, m.State().Phase)
	assert.True(t, m.Resolve(second, 2))
	assert.Equal(t, 2, m.State().Data)
}

func TestDetachBlocksUpdates(t *testing.T) {
	m := New(0)
	tk := m.Begin()
	m.Detach()

	assert.True(t, m.Detached())
	assert.False(t, m.Resolve(tk, 5))
	assert.False(t, m.Reject(tk, errors.New("late")))
	assert.Equal(t, Loading, m.State().Phase)
}

func TestPhaseText(t *testing.T) {
	for p, want := range map[Phase]string{Idle: "idle", Loading: "loading", Ready: "ready", Failed: "error"} {
		b, err := p.MarshalText()
		assert.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}
