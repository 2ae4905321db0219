package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ArchivedSubmission is one distinct submission to be re-graded.
type ArchivedSubmission struct {
	Slug       string
	QuestionID int
	StudentSQL string

	// Verdict is the verdict the submission got when it was archived.
	Verdict string
}

// RerunHistory re-grades the archived submissions with the current grading
// rules and reports verdict drift.
func (c *Context) RerunHistory(ctx context.Context, dryRun bool) error {
	submissions, err := c.getDistinctSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("get archived submissions: %w", err)
	}

	if len(submissions) == 0 {
		fmt.Println("No archived submissions found to rerun.")
		return nil
	}

	if dryRun {
		return c.displayDryRun(submissions)
	}

	if c.grader == nil {
		return fmt.Errorf("grader is not set")
	}

	model := newRerunModel(c, submissions)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	return nil
}

// displayDryRun displays what would be re-graded without executing anything.
func (c *Context) displayDryRun(submissions []ArchivedSubmission) error {
	fmt.Println("\n🔍 Dry Run Mode - Preview of submissions to be re-graded:")
	fmt.Println()
	fmt.Printf("Total submissions to re-grade: %d\n\n", len(submissions))

	byQuestion := make(map[string][]ArchivedSubmission)
	for _, sub := range submissions {
		key := fmt.Sprintf("%s/%d", sub.Slug, sub.QuestionID)
		byQuestion[key] = append(byQuestion[key], sub)
	}

	for key, subs := range byQuestion {
		fmt.Printf("Question %s:\n", key)
		for _, sub := range subs {
			fmt.Printf("  - [%s] %s\n", sub.Verdict, truncateString(sub.StudentSQL, 80))
		}
		fmt.Println()
	}

	fmt.Println("To actually re-grade these submissions, run without --dry-run flag.")
	return nil
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// getDistinctSubmissions returns the latest archived grading of every
// distinct (database, question, query) triple, newest first.
func (c *Context) getDistinctSubmissions(ctx context.Context) ([]ArchivedSubmission, error) {
	if c.store == nil {
		return nil, fmt.Errorf("history store is not set")
	}

	entries, err := c.store.ListLatest(ctx, 0)
	if err != nil {
		return nil, err
	}

	type key struct {
		Slug       string
		QuestionID int
		StudentSQL string
	}
	seen := make(map[key]bool)
	var submissions []ArchivedSubmission

	for _, entry := range entries {
		k := key{Slug: entry.Slug, QuestionID: entry.QuestionID, StudentSQL: entry.StudentSQL}
		if seen[k] {
			continue
		}
		seen[k] = true

		submissions = append(submissions, ArchivedSubmission{
			Slug:       entry.Slug,
			QuestionID: entry.QuestionID,
			StudentSQL: entry.StudentSQL,
			Verdict:    entry.Verdict,
		})
	}

	return submissions, nil
}

// rerunModel is the Bubble Tea model for the rerun progress UI
type rerunModel struct {
	clictx      *Context
	submissions []ArchivedSubmission

	currentIndex int
	completed    int
	failed       int
	drifted      int

	progress progress.Model
	spinner  spinner.Model
	status   string
	done     bool
	mu       sync.Mutex
}

func newRerunModel(clictx *Context, submissions []ArchivedSubmission) *rerunModel {
	prog := progress.New(progress.WithScaledGradient("#FF7CCB", "#FDFF8C"))
	prog.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &rerunModel{
		clictx:      clictx,
		submissions: submissions,
		progress:    prog,
		spinner:     s,
		status:      "Initializing...",
	}
}

func (m *rerunModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startRerun,
	)
}

func (m *rerunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case rerunProgressMsg:
		m.mu.Lock()
		m.currentIndex = msg.Index
		m.completed = msg.Completed
		m.failed = msg.Failed
		m.drifted = msg.Drifted
		m.status = msg.Status
		m.done = msg.Done
		m.mu.Unlock()

		if m.done {
			return m, tea.Quit
		}

		return m, m.processNext()

	case rerunStartMsg:
		return m, m.processNext()

	default:
		return m, nil
	}
}

func (m *rerunModel) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		var result string
		result += "\n"
		result += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).
			Render("✅ Rerun Complete!") + "\n\n"
		result += fmt.Sprintf("Total: %d\n", len(m.submissions))
		result += lipgloss.NewStyle().Foreground(lipgloss.Color("2")).
			Render(fmt.Sprintf("Re-graded: %d", m.completed)) + "\n"
		if m.drifted > 0 {
			result += lipgloss.NewStyle().Foreground(lipgloss.Color("3")).
				Render(fmt.Sprintf("Verdict changed: %d", m.drifted)) + "\n"
		}
		if m.failed > 0 {
			result += lipgloss.NewStyle().Foreground(lipgloss.Color("1")).
				Render(fmt.Sprintf("Failed: %d", m.failed)) + "\n"
		}
		result += "\nPress 'q' to quit.\n"
		return result
	}

	var s string
	s += "\n"
	s += lipgloss.NewStyle().Bold(true).Render("🔄 Re-grading Archived Submissions") + "\n\n"

	percent := float64(m.completed+m.failed) / float64(len(m.submissions))
	s += fmt.Sprintf("Progress: %s %.1f%%\n", m.progress.ViewAs(percent), percent*100)
	s += "\n"

	s += m.spinner.View() + " " + m.status + "\n"
	s += "\n"

	s += fmt.Sprintf("Total: %d | ", len(m.submissions))
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("2")).
		Render(fmt.Sprintf("Re-graded: %d", m.completed))
	if m.drifted > 0 {
		s += " | " + lipgloss.NewStyle().Foreground(lipgloss.Color("3")).
			Render(fmt.Sprintf("Changed: %d", m.drifted))
	}
	if m.failed > 0 {
		s += " | " + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).
			Render(fmt.Sprintf("Failed: %d", m.failed))
	}
	s += "\n\n"

	if m.currentIndex < len(m.submissions) {
		sub := m.submissions[m.currentIndex]
		s += fmt.Sprintf("Processing: %s/%d\n", sub.Slug, sub.QuestionID)
	}

	s += "\nPress 'q' to quit.\n"

	return s
}

// Messages
type rerunStartMsg struct{}

type rerunProgressMsg struct {
	Index     int
	Completed int
	Failed    int
	Drifted   int
	Status    string
	Done      bool
}

// Commands
func (m *rerunModel) startRerun() tea.Msg {
	return rerunStartMsg{}
}

func (m *rerunModel) processNext() tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		index := m.currentIndex
		completed := m.completed
		failed := m.failed
		drifted := m.drifted
		m.mu.Unlock()

		if index >= len(m.submissions) {
			return rerunProgressMsg{
				Index:     index,
				Completed: completed,
				Failed:    failed,
				Drifted:   drifted,
				Status:    "All done!",
				Done:      true,
			}
		}

		sub := m.submissions[index]
		statusMsg := fmt.Sprintf("Re-grading submission %d/%d (%s/%d)...",
			index+1, len(m.submissions), sub.Slug, sub.QuestionID)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		resp, err := m.clictx.Grade(ctx, sub.Slug, sub.QuestionID, sub.StudentSQL)
		if err != nil {
			failed++
			return rerunProgressMsg{
				Index:     index + 1,
				Completed: completed,
				Failed:    failed,
				Drifted:   drifted,
				Status:    fmt.Sprintf("Failed: %v", err),
				Done:      false,
			}
		}

		completed++
		if string(resp.Verdict) != sub.Verdict {
			drifted++
			statusMsg += fmt.Sprintf(" %s → %s", sub.Verdict, resp.Verdict)
		} else {
			statusMsg += " ✓"
		}

		return rerunProgressMsg{
			Index:     index + 1,
			Completed: completed,
			Failed:    failed,
			Drifted:   drifted,
			Status:    statusMsg,
			Done:      false,
		}
	}
}
