package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestOperationRunsAndQuits(t *testing.T) {
	called := false
	m := NewOperation(context.Background(), "Program", func(ctx context.Context) Result {
		called = true
		return Result{Status: StatusOK, Summary: "Target programmed", Details: []string{"app.hex"}}
	})

	cmd := m.runCmd()
	msg := cmd()
	done, ok := msg.(OperationDoneMsg)
	if !ok {
		t.Fatalf("expected OperationDoneMsg, got %T", msg)
	}
	if !called {
		t.Fatal("operation was not invoked")
	}

	_, quit := m.Update(done)
	if quit == nil {
		t.Fatal("expected quit command after completion")
	}
	if !m.Done() {
		t.Fatal("expected model to be done")
	}
	if m.Result().Summary != "Target programmed" {
		t.Fatalf("unexpected result %+v", m.Result())
	}

	view := m.View()
	if !strings.Contains(view, "Target programmed") || !strings.Contains(view, "app.hex") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestOperationCancelAbortsContext(t *testing.T) {
	var seen context.Context
	m := NewOperation(context.Background(), "Erase", func(ctx context.Context) Result {
		seen = ctx
		<-ctx.Done()
		return Result{Status: StatusFailed, Summary: "Erase aborted", Err: ctx.Err()}
	})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.aborting {
		t.Fatal("expected aborting state")
	}
	if !strings.Contains(m.View(), "aborting") {
		t.Fatalf("expected aborting in view, got:\n%s", m.View())
	}

	msg := m.runCmd()()
	if !errors.Is(seen.Err(), context.Canceled) {
		t.Fatalf("expected cancelled context, got %v", seen.Err())
	}

	m.Update(msg)
	if m.Result().Status != StatusFailed {
		t.Fatalf("expected failed status, got %v", m.Result().Status)
	}
	if !strings.Contains(m.View(), "context canceled") {
		t.Fatalf("expected error in view, got:\n%s", m.View())
	}
}

func TestOperationViewWhileRunning(t *testing.T) {
	m := NewOperation(context.Background(), "Connect", func(context.Context) Result { return Result{} })
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	m.Init()
	m.now = func() time.Time { return base.Add(1500 * time.Millisecond) }

	view := m.View()
	if !strings.Contains(view, "running") || !strings.Contains(view, "1.5s") {
		t.Fatalf("unexpected running view:\n%s", view)
	}
}

func TestStatusBadges(t *testing.T) {
	if !strings.Contains(statusBadge(StatusSkipped), "SKIPPED") {
		t.Error("expected SKIPPED badge")
	}
	if !strings.Contains(statusBadge(StatusFailed), "FAILED") {
		t.Error("expected FAILED badge")
	}
}
