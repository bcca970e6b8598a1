package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/logging"
	"github.com/buckleypaul/jflash/internal/serial"
	"github.com/buckleypaul/jflash/internal/ui"
	"github.com/buckleypaul/jflash/internal/usbprobe"
)

func newProbesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "probes",
		Short: "List attached J-Link probes and their virtual COM ports",
		Long: `Scan USB for SEGGER J-Link probes and list the serial ports they expose.
Use this to verify the probe is visible before connecting to a target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			log := logging.For("probes")

			var usbLines []string
			probes, err := usbprobe.Discover(ctx)
			if err != nil {
				log.WithError(err).Warn("USB scan failed")
				usbLines = append(usbLines, ui.ErrorStyle.Render("USB scan failed: "+err.Error()))
			}
			for _, p := range probes {
				usbLines = append(usbLines, p.Label())
			}
			if len(usbLines) == 0 {
				usbLines = append(usbLines, ui.DimStyle.Render("No J-Link probes found."))
			}

			var portLines []string
			ports, err := serial.JLinkPorts()
			if err != nil {
				log.WithError(err).Warn("Serial port scan failed")
				portLines = append(portLines, ui.ErrorStyle.Render("Serial scan failed: "+err.Error()))
			}
			for _, p := range ports {
				line := p.Name
				if p.SerialNumber != "" {
					line += ui.DimStyle.Render(" S/N " + p.SerialNumber)
				}
				portLines = append(portLines, line)
			}
			if len(portLines) == 0 {
				portLines = append(portLines, ui.DimStyle.Render("No J-Link VCOM ports found."))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Panel("USB probes", strings.Join(usbLines, "\n"), 60))
			fmt.Fprintln(out, ui.Panel("VCOM ports", strings.Join(portLines, "\n"), 60))
			return nil
		},
	}
}
