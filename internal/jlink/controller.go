// Package jlink drives SEGGER J-Link Commander to check target connectivity,
// erase flash and program firmware images.
//
// J-Link Commander reports results only as free-form text, so every operation
// writes a command script, runs the tool once against it and classifies the
// captured output:
//
//	ctl, err := jlink.New(ctx, jlink.Config{
//	    ConnectedMarker: "Cortex-M3 r2p0, Little endian",
//	    Device:          "LPC1343",
//	    Interface:       jlink.InterfaceSWD,
//	    SpeedKHz:        1000,
//	    ToolDir:         "/opt/SEGGER/JLink",
//	})
//	if err != nil {
//	    return err
//	}
//	if ok, _ := ctl.IsConnected(ctx); ok {
//	    outcome, err := ctl.Program(ctx, []string{"app.hex"}, nil)
//	    ...
//	}
//
// Programming failures are returned as OutcomeFailed; errors are reserved for
// environment problems such as a missing tool or an exceeded timeout.
package jlink

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/buckleypaul/jflash/internal/logging"
)

// Interface selects the debug interface between probe and target.
type Interface string

const (
	InterfaceSWD  Interface = "SWD"
	InterfaceJTAG Interface = "JTAG"
)

// ParseInterface accepts "swd"/"s" and "jtag"/"j" in any case.
func ParseInterface(s string) (Interface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "swd", "s":
		return InterfaceSWD, nil
	case "jtag", "j":
		return InterfaceJTAG, nil
	}
	return "", &ConfigError{Field: "interface", Message: fmt.Sprintf("must be SWD or JTAG, got %q", s)}
}

// Config describes the probe and target. It is copied into the Controller
// on New and never modified afterwards.
type Config struct {
	// ConnectedMarker is output text J-Link prints once the target core is
	// detected, e.g. "Cortex-M3 r2p0, Little endian".
	ConnectedMarker string
	// Device is the J-Link device name, e.g. "LPC1343".
	Device    string
	Interface Interface
	SpeedKHz  int
	// ExeName overrides the per-OS default executable name.
	ExeName string
	// ToolDir is joined with the executable name. Empty means PATH lookup.
	ToolDir string
}

func (c Config) validate() error {
	if c.Device == "" {
		return &ConfigError{Field: "device", Message: "is required"}
	}
	if c.Interface != InterfaceSWD && c.Interface != InterfaceJTAG {
		return &ConfigError{Field: "interface", Message: fmt.Sprintf("must be SWD or JTAG, got %q", c.Interface)}
	}
	if c.SpeedKHz <= 0 {
		return &ConfigError{Field: "speed", Message: fmt.Sprintf("must be positive, got %d", c.SpeedKHz)}
	}
	return nil
}

// toolArgs returns the arguments placed before the script path.
func (c Config) toolArgs() []string {
	return []string{
		"-device", c.Device,
		"-if", string(c.Interface),
		"-speed", strconv.Itoa(c.SpeedKHz),
	}
}

// BinFile is a raw binary image and the address it is loaded at.
type BinFile struct {
	Path    string
	Address uint32
}

// Controller runs J-Link Commander operations for one configured probe.
// Each call is an independent spawn-and-classify cycle. Callers must not
// drive the same physical probe from two Controllers at once.
type Controller struct {
	cfg    Config
	opts   options
	path   string
	args   []string
	runner *Runner
	log    *logrus.Entry
}

// New resolves and validates the J-Link executable. It fails with
// *UnsupportedPlatformError, *ToolNotFoundError or *ConfigError.
func New(ctx context.Context, cfg Config, opts ...Option) (*Controller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.For("jlink")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	path, err := ResolveToolPath(cfg.ExeName, cfg.ToolDir)
	if err != nil {
		return nil, err
	}
	o.log.Infof("Using path to JLinkExe: %s", path)

	args := cfg.toolArgs()
	o.log.Infof("JLinkExe parameters: %s", strings.Join(args, " "))

	if err := ValidateTool(ctx, path); err != nil {
		return nil, err
	}

	return &Controller{
		cfg:    cfg,
		opts:   o,
		path:   path,
		args:   args,
		runner: NewRunner(path, o.log),
		log:    o.log,
	}, nil
}

// Config returns the controller's probe configuration.
func (c *Controller) Config() Config { return c.cfg }

// ToolPath returns the resolved J-Link executable path.
func (c *Controller) ToolPath() string { return c.path }

// RunScript runs an existing script file and returns the captured output.
func (c *Controller) RunScript(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	return c.runner.Run(ctx, path, c.args, timeout)
}

// RunCommands writes commands to a temporary script, runs it and returns the
// captured output. The script is removed before returning.
func (c *Controller) RunCommands(ctx context.Context, commands []string, timeout time.Duration) ([]byte, error) {
	script, err := BuildScript(commands)
	if err != nil {
		return nil, &ProcessExecutionError{Op: "script", Err: err}
	}
	defer func() {
		if err := script.Release(); err != nil {
			c.log.WithError(err).Warn("Could not remove temporary script file")
		}
	}()

	c.log.Debugf("Temporary script file name: %s", script.Path())
	c.log.Debugf("Running JLink commands: %s", strings.Join(commands, "\n"))
	return c.RunScript(ctx, script.Path(), timeout)
}

// IsConnected reports whether the configured target answers a connect.
func (c *Controller) IsConnected(ctx context.Context) (bool, error) {
	out, err := c.RunCommands(ctx, []string{"connect", "q"}, c.opts.connectTimeout)
	if err != nil {
		return false, err
	}
	return IsConnected(out, c.cfg.ConnectedMarker), nil
}

// Erase erases the entire flash of the target. The tool output is not
// inspected, so a nil error does not prove the erase happened.
func (c *Controller) Erase(ctx context.Context) error {
	_, err := c.RunCommands(ctx, []string{"r", "erase", "r", "q"}, c.opts.timeout)
	return err
}

// Program loads the hex files and then the bin files, in the given order,
// resets and starts the target.
func (c *Controller) Program(ctx context.Context, hexFiles []string, binFiles []BinFile) (Outcome, error) {
	commands, err := programCommands(hexFiles, binFiles)
	if err != nil {
		return OutcomeFailed, err
	}

	out, err := c.RunCommands(ctx, commands, c.opts.timeout)
	if err != nil {
		return OutcomeFailed, err
	}

	outcome := ClassifyProgramming(out)
	switch outcome {
	case OutcomeAlreadyProgrammed:
		c.log.Info("Target already programmed")
	case OutcomeSuccess:
		c.log.Info("Target programmed")
	default:
		if bytes.Contains(out, []byte(MarkerWriteFailed)) {
			c.log.Info("Writing flash failed")
		} else {
			c.log.Info("Programming target failed")
		}
	}
	return outcome, nil
}

func programCommands(hexFiles []string, binFiles []BinFile) ([]string, error) {
	commands := make([]string, 0, len(hexFiles)+len(binFiles)+4)
	commands = append(commands, "r")

	for _, f := range hexFiles {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve hex file %s: %w", f, err)
		}
		commands = append(commands, fmt.Sprintf(`loadfile "%s"`, abs))
	}

	for _, b := range binFiles {
		abs, err := filepath.Abs(b.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve bin file %s: %w", b.Path, err)
		}
		commands = append(commands, fmt.Sprintf(`loadbin "%s" 0x%08X`, abs, b.Address))
	}

	return append(commands, "r", "g", "q"), nil
}
