package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/serial"
	"github.com/buckleypaul/jflash/internal/store"
)

func newMonitorCmd(e *env) *cobra.Command {
	var (
		port  string
		baud  int
		toLog bool
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream the target UART through the J-Link virtual COM port",
		Long: `Open a serial port and copy everything the target prints to stdout until
interrupted. Without --port the configured serial_port is used, then the
first J-Link VCOM port found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = e.cfg.SerialPort
			}
			if !cmd.Flags().Changed("baud") {
				baud = e.cfg.SerialBaudRate
			}
			if port == "" {
				ports, err := serial.JLinkPorts()
				if err != nil {
					return fmt.Errorf("list serial ports: %w", err)
				}
				if len(ports) == 0 {
					return fmt.Errorf("no J-Link VCOM port found, pass --port")
				}
				port = ports[0].Name
			}

			m := serial.NewMonitor()
			if err := m.Connect(port, baud); err != nil {
				return fmt.Errorf("open %s: %w", port, err)
			}
			defer m.Disconnect()

			var out io.Writer = cmd.OutOrStdout()
			session := store.MonitorSession{
				ID:        store.NewID(),
				Port:      port,
				BaudRate:  baud,
				Timestamp: time.Now(),
			}
			if toLog {
				dir, err := e.store.LogsDir()
				if err != nil {
					return err
				}
				session.LogFile = filepath.Join(dir, "serial-"+session.ID+".log")
				f, err := os.Create(session.LogFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = io.MultiWriter(out, f)
			}
			e.record(func(s *store.Store) error { return s.AddMonitorSession(session) })

			fmt.Fprintf(cmd.ErrOrStderr(), "Connected to %s @ %d, ctrl+c to stop\n", port, baud)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case data := <-m.DataChan():
					if _, err := io.WriteString(out, data); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "serial port, e.g. /dev/ttyACM0 or COM3")
	cmd.Flags().IntVar(&baud, "baud", 0, "baud rate (default from config)")
	cmd.Flags().BoolVar(&toLog, "log", false, "also write the session to .jflash/logs/")
	return cmd
}
