package cli

import (
	"github.com/spf13/cobra"
)

func newExecCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "exec -- <command>...",
		Short: "Run raw J-Link Commander commands and print the output",
		Long: `Write the given commands, one per line and in order, to a temporary script,
run J-Link Commander against it and print everything it wrote. End the list
with "q" unless you want the tool to wait for more input until the timeout.`,
		Example: `  jflash exec -- connect "mem32 0x20000000 4" q`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := e.controller(cmd.Context())
			if err != nil {
				return err
			}
			timeout, err := e.cfg.TimeoutDuration()
			if err != nil {
				return err
			}

			out, err := ctl.RunCommands(cmd.Context(), args, timeout)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
