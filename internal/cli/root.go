// Package cli implements the jflash command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/config"
	"github.com/buckleypaul/jflash/internal/jlink"
	"github.com/buckleypaul/jflash/internal/logging"
	"github.com/buckleypaul/jflash/internal/store"
)

const version = "0.1.0"

// ExitError makes the process exit with Code without printing an error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type globalFlags struct {
	projectDir string
	device     string
	iface      string
	speed      int
	marker     string
	exe        string
	jlinkDir   string
	timeout    string
	verbose    bool
	logJSON    bool
}

// env carries the state every subcommand needs, resolved once before it runs.
type env struct {
	flags globalFlags
	cfg   config.Config
	root  string
	store *store.Store
}

// NewRootCmd builds the jflash command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "jflash",
		Short: "Detect, erase and program microcontrollers through SEGGER J-Link",
		Long: `jflash drives J-Link Commander to check target connectivity, erase flash and
program hex/bin images over SWD or JTAG.

Settings are read from ~/.config/jflash/config.{json,yaml} and then
.jflash/config.{json,yaml} in the project directory; flags override both.

Examples:
  jflash connected --device LPC1343 --marker "Cortex-M3 r2p0, Little endian"
  jflash program --hex build/app.hex --bin boot.bin@0x08000000
  jflash erase
  jflash exec -- connect "mem32 0x20000000 4" q`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.flags.projectDir, "project-dir", "", "project directory holding .jflash/ (default: current directory)")
	pf.StringVar(&e.flags.device, "device", "", "J-Link device name, e.g. LPC1343")
	pf.StringVar(&e.flags.iface, "if", "", "target interface: SWD or JTAG")
	pf.IntVar(&e.flags.speed, "speed", 0, "interface speed in kHz")
	pf.StringVar(&e.flags.marker, "marker", "", "output text that proves the target is connected")
	pf.StringVar(&e.flags.exe, "exe", "", "J-Link Commander executable name (default depends on OS)")
	pf.StringVar(&e.flags.jlinkDir, "jlink-dir", "", "directory containing J-Link Commander (default: PATH)")
	pf.StringVar(&e.flags.timeout, "timeout", "", `per-operation timeout, e.g. 90s; "0" disables`)
	pf.BoolVarP(&e.flags.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&e.flags.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(
		newConnectedCmd(e),
		newEraseCmd(e),
		newProgramCmd(e),
		newExecCmd(e),
		newProbesCmd(e),
		newMonitorCmd(e),
		newHistoryCmd(e),
		newConfigCmd(e),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func (e *env) setup(cmd *cobra.Command) error {
	level := "warn"
	if e.flags.verbose {
		level = "debug"
	}
	logging.Init(logging.Options{Level: level, JSON: e.flags.logJSON, Output: cmd.ErrOrStderr()})

	e.root = e.flags.projectDir
	if e.root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		e.root = cwd
	}

	e.cfg = config.Load(e.root)
	e.applyFlags(cmd)
	e.store = store.New(config.Dir(e.root))
	return nil
}

func (e *env) applyFlags(cmd *cobra.Command) {
	changed := cmd.Flags().Changed
	if changed("device") {
		e.cfg.Device = e.flags.device
	}
	if changed("if") {
		e.cfg.Interface = e.flags.iface
	}
	if changed("speed") {
		e.cfg.SpeedKHz = e.flags.speed
	}
	if changed("marker") {
		e.cfg.ConnectedMarker = e.flags.marker
	}
	if changed("exe") {
		e.cfg.ExeName = e.flags.exe
	}
	if changed("jlink-dir") {
		e.cfg.JLinkDir = e.flags.jlinkDir
	}
	if changed("timeout") {
		e.cfg.Timeout = e.flags.timeout
	}
}

// controller builds a J-Link controller from the effective configuration.
func (e *env) controller(ctx context.Context) (*jlink.Controller, error) {
	pc, err := e.cfg.ProbeConfig()
	if err != nil {
		return nil, err
	}
	timeout, err := e.cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return jlink.New(ctx, pc,
		jlink.WithTimeout(timeout),
		jlink.WithLogger(logging.For("jlink")),
	)
}

// record stores a history entry, logging rather than failing on error.
func (e *env) record(add func(*store.Store) error) {
	if err := add(e.store); err != nil {
		logging.For("cli").WithError(err).Warn("Could not write history")
	}
}
