package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jobsched/internal/board"
	"jobsched/internal/daterange"
	"jobsched/internal/logging"
	"jobsched/internal/models"
	"jobsched/internal/storage/sqlite"
)

var (
	boardJob     int64
	boardDate    string
	boardMine    string
	boardDB      string
	boardBackend string
	boardJSON    bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the today, week, completed and kanban views of a job",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().Int64Var(&boardJob, "job", 0, "Job (schedule) id")
	boardCmd.Flags().StringVar(&boardDate, "date", "", "Reference day as YYYY-MM-DD (default today)")
	boardCmd.Flags().StringVar(&boardMine, "mine", "", "Only show tasks assigned to this email")
	boardCmd.Flags().StringVar(&boardDB, "db", "", "Path to sqlite database file (overrides JOBSCHED_DB_PATH)")
	boardCmd.Flags().StringVar(&boardBackend, "backend", "", "Read from this upstream API instead of the database")
	boardCmd.Flags().BoolVar(&boardJSON, "json", false, "Output as JSON")
	_ = boardCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]*string{
		"db":      &boardDB,
		"backend": &boardBackend,
	})
	if err != nil {
		return err
	}
	logger, closer := logging.New(cfg.Log, cmd.ErrOrStderr())
	defer closer.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	req := board.Request{JobID: boardJob, Now: time.Now().In(loc), Viewer: boardMine}
	if boardDate != "" {
		day, err := daterange.ParseDate(boardDate, loc)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		req.Now = day
	}

	var src board.Source
	if cfg.BackendURL == "" {
		store, err := sqlite.Open(cfg.DBPath, logger)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
		src = store
	} else {
		src = recordsFor(cfg, loc, nil, logger)
	}

	snap := board.NewLoader(src, logger).Load(cmd.Context(), req)
	if snap.Notice != "" {
		logger.Warn(snap.Notice, slog.String("state", snap.State.String()))
	}

	out := cmd.OutOrStdout()
	if boardJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return renderBoard(out, snap)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delayedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// renderBoard writes a plain-text rendition of a snapshot.
func renderBoard(w io.Writer, snap board.Snapshot) error {
	var b strings.Builder

	heading := fmt.Sprintf("Board for %s", snap.Date)
	if snap.Job != nil {
		name := snap.Job.ProjectSetup.Name
		if name == "" {
			name = fmt.Sprintf("job %d", snap.Job.ID)
		}
		heading = fmt.Sprintf("%s (%s to %s) on %s", name, snap.Job.StartDate, snap.Job.EndDate, snap.Date)
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")
	if snap.Viewer != "" {
		b.WriteString(mutedStyle.Render("assigned to " + snap.Viewer))
		b.WriteString("\n")
	}
	if snap.Notice != "" {
		b.WriteString(errorStyle.Render(snap.Notice))
		b.WriteString("\n")
	}

	writeSection(&b, "Today", snap.Views.Today)
	writeSection(&b, "This week", snap.Views.Week)
	writeSection(&b, "Completed", snap.Views.Completed)
	for _, col := range snap.Views.Kanban {
		writeSection(&b, "Kanban: "+string(col.Stage), col.Tasks)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, title string, tasks []models.Task) {
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(tasks))))
	b.WriteString("\n")
	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		b.WriteString("\n")
		return
	}
	for _, t := range tasks {
		b.WriteString("  ")
		b.WriteString(taskLine(t))
		b.WriteString("\n")
	}
}

func taskLine(t models.Task) string {
	dates := "undated"
	if t.Dated() {
		dates = fmt.Sprintf("%s..%s", t.StartDate, t.EndDate)
	}
	status := string(t.Status)
	switch t.Status {
	case models.StatusCompleted:
		status = doneStyle.Render(status)
	case models.StatusDelayed:
		status = delayedStyle.Render(status)
	}
	line := fmt.Sprintf("#%d %s  %s  %s", t.ID, t.Title, mutedStyle.Render(dates), status)
	if t.AssignedWorker != nil {
		who := t.AssignedWorker.Name
		if who == "" {
			who = t.AssignedWorker.Email
		}
		if who != "" {
			line += mutedStyle.Render("  @" + who)
		}
	}
	return line
}
