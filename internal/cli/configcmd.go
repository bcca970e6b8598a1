package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/config"
	"github.com/buckleypaul/jflash/internal/ui"
)

func newConfigCmd(e *env) *cobra.Command {
	var save, global bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after merging global and project files with
command-line flags. With --save, write it to .jflash/config.json
(or the global file with --global).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c := e.cfg
			fmt.Fprintln(out, ui.Title("Configuration"))
			fmt.Fprintln(out, ui.Field("device", c.Device))
			fmt.Fprintln(out, ui.Field("interface", c.Interface))
			fmt.Fprintln(out, ui.Field("speed_khz", strconv.Itoa(c.SpeedKHz)))
			fmt.Fprintln(out, ui.Field("connected_marker", c.ConnectedMarker))
			fmt.Fprintln(out, ui.Field("exe_name", c.ExeName))
			fmt.Fprintln(out, ui.Field("jlink_dir", c.JLinkDir))
			fmt.Fprintln(out, ui.Field("timeout", c.Timeout))
			fmt.Fprintln(out, ui.Field("serial_port", c.SerialPort))
			fmt.Fprintln(out, ui.Field("serial_baud_rate", strconv.Itoa(c.SerialBaudRate)))

			if save {
				if err := config.Save(c, e.root, global); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				fmt.Fprintln(out, ui.DimStyle.Render("saved"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "persist the effective configuration")
	cmd.Flags().BoolVar(&global, "global", false, "with --save, write the global config instead of the project one")
	return cmd
}
