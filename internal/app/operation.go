package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/jflash/internal/ui"
)

// Status is the verdict shown when an operation finishes.
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
	StatusFailed
)

// Result is what an operation reports back to the model.
type Result struct {
	Status  Status
	Summary string
	Details []string
	Err     error
}

// OperationFunc performs one probe operation. It must honour ctx so the
// user can abort, which kills the running J-Link process.
type OperationFunc func(ctx context.Context) Result

// OperationDoneMsg is sent when the operation returns.
type OperationDoneMsg struct {
	Result   Result
	Duration time.Duration
}

// OperationModel shows a spinner while a probe operation runs and the
// verdict once it completes.
type OperationModel struct {
	title    string
	run      OperationFunc
	ctx      context.Context
	cancel   context.CancelFunc
	spinner  spinner.Model
	start    time.Time
	now      func() time.Time
	done     bool
	aborting bool
	result   Result
	duration time.Duration
}

// NewOperation creates a model that runs op when started.
func NewOperation(ctx context.Context, title string, op OperationFunc) *OperationModel {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.AccentStyle
	return &OperationModel{
		title:   title,
		run:     op,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
		now:     time.Now,
	}
}

func (m *OperationModel) Init() tea.Cmd {
	m.start = m.now()
	return tea.Batch(m.spinner.Tick, m.runCmd())
}

func (m *OperationModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		start := m.now()
		res := m.run(m.ctx)
		return OperationDoneMsg{Result: res, Duration: m.now().Sub(start)}
	}
}

func (m *OperationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OperationDoneMsg:
		m.done = true
		m.result = msg.Result
		m.duration = msg.Duration
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		if m.done {
			if key.Matches(msg, GlobalKeys.Quit) || key.Matches(msg, GlobalKeys.Cancel) {
				return m, tea.Quit
			}
			return m, nil
		}
		if key.Matches(msg, GlobalKeys.Cancel) {
			// Wait for the operation to observe the cancellation and return.
			m.aborting = true
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *OperationModel) View() string {
	var b strings.Builder
	b.WriteString(ui.Title(m.title))
	b.WriteString("\n")

	if !m.done {
		state := "running"
		if m.aborting {
			state = "aborting"
		}
		elapsed := m.now().Sub(m.start).Round(100 * time.Millisecond)
		b.WriteString(fmt.Sprintf("%s %s %s\n", m.spinner.View(), state, ui.DimStyle.Render(elapsed.String())))
		b.WriteString(ui.DimStyle.Render("ctrl+c to abort"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(statusBadge(m.result.Status))
	b.WriteString(" ")
	b.WriteString(m.result.Summary)
	b.WriteString(ui.DimStyle.Render(fmt.Sprintf(" in %s", m.duration.Round(time.Millisecond))))
	b.WriteString("\n")
	for _, d := range m.result.Details {
		b.WriteString("  " + d + "\n")
	}
	if m.result.Err != nil {
		b.WriteString(ui.ErrorStyle.Render("  " + m.result.Err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// Done reports whether the operation has returned.
func (m *OperationModel) Done() bool { return m.done }

// Result returns the operation result once Done.
func (m *OperationModel) Result() Result { return m.result }

func statusBadge(s Status) string {
	switch s {
	case StatusOK:
		return ui.SuccessBadge("OK")
	case StatusSkipped:
		return ui.WarningBadge("SKIPPED")
	default:
		return ui.ErrorBadge("FAILED")
	}
}
