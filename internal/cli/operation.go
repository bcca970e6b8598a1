package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/app"
)

// runOperation runs op either inline (plain) or inside the interactive
// progress view, and returns its result.
func runOperation(cmd *cobra.Command, plain bool, title string, op app.OperationFunc) (app.Result, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if plain {
		start := time.Now()
		res := op(ctx)
		printResult(out, title, res, time.Since(start))
		return res, nil
	}

	m := app.NewOperation(ctx, title, op)
	final, err := tea.NewProgram(m, tea.WithOutput(out), tea.WithInput(cmd.InOrStdin())).Run()
	if err != nil {
		return app.Result{}, fmt.Errorf("progress view: %w", err)
	}
	return final.(*app.OperationModel).Result(), nil
}

func printResult(w io.Writer, title string, res app.Result, d time.Duration) {
	status := "OK"
	switch res.Status {
	case app.StatusSkipped:
		status = "SKIPPED"
	case app.StatusFailed:
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s: %s %s (%s)\n", title, status, res.Summary, d.Round(time.Millisecond))
	for _, line := range res.Details {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if res.Err != nil {
		fmt.Fprintf(w, "  error: %v\n", res.Err)
	}
}
