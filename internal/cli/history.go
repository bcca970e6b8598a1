package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/ui"
)

func newHistoryCmd(e *env) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past connect, erase and program runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			show := func(k string) bool { return kind == "" || kind == k }

			switch kind {
			case "", "flash", "erase", "connect":
			default:
				return fmt.Errorf("unknown history kind %q (want flash, erase or connect)", kind)
			}

			if show("connect") {
				records, err := e.store.Connections()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Title("Connect"))
				for _, r := range records {
					writeHistoryLine(out, r.Timestamp, r.Connected, r.Device, "connected", r.Duration, r.Error)
				}
			}
			if show("erase") {
				records, err := e.store.Erases()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Title("Erase"))
				for _, r := range records {
					writeHistoryLine(out, r.Timestamp, r.Success, r.Device, "erased", r.Duration, r.Error)
				}
			}
			if show("flash") {
				records, err := e.store.Flashes()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Title("Program"))
				for _, r := range records {
					files := strings.Join(append(append([]string(nil), r.HexFiles...), r.BinFiles...), ", ")
					writeHistoryLine(out, r.Timestamp, r.Success, r.Device, r.Outcome+" "+files, r.Duration, r.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only show one kind: flash, erase or connect")
	return cmd
}

func writeHistoryLine(w io.Writer, ts time.Time, ok bool, device, what, duration, errText string) {
	badge := ui.SuccessBadge("OK")
	if !ok {
		badge = ui.ErrorBadge("FAIL")
	}
	line := fmt.Sprintf("%s %s %s %s %s", ts.Format(time.DateTime), badge, device, what, ui.DimStyle.Render(duration))
	if errText != "" {
		line += " " + ui.ErrorStyle.Render(errText)
	}
	fmt.Fprintln(w, line)
}
