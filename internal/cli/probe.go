package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/jflash/internal/app"
	"github.com/buckleypaul/jflash/internal/jlink"
	"github.com/buckleypaul/jflash/internal/store"
)

func newConnectedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "connected",
		Short: "Check that the configured target answers the probe",
		Long: `Run "connect" through J-Link Commander and look for the configured marker
text in its output. Exits 0 when the target is connected and 1 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := e.controller(cmd.Context())
			if err != nil {
				return err
			}

			start := time.Now()
			ok, err := ctl.IsConnected(cmd.Context())
			rec := store.ConnectionRecord{
				Device:    e.cfg.Device,
				Timestamp: start,
				Connected: ok,
				Duration:  time.Since(start).String(),
			}
			if err != nil {
				rec.Error = err.Error()
			}
			e.record(func(s *store.Store) error { return s.AddConnection(rec) })
			if err != nil {
				return err
			}

			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Target %s not connected\n", e.cfg.Device)
				return &ExitError{Code: 1}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %s connected\n", e.cfg.Device)
			return nil
		},
	}
}

func newEraseCmd(e *env) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase the entire target flash",
		Long: `Reset the target and erase its flash. J-Link Commander output is not
inspected for erase, so success only means the tool ran to completion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := e.controller(cmd.Context())
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := runOperation(cmd, plain, "Erase "+e.cfg.Device, func(ctx context.Context) app.Result {
				if err := ctl.Erase(ctx); err != nil {
					return app.Result{Status: app.StatusFailed, Summary: "Erase did not complete", Err: err}
				}
				return app.Result{Status: app.StatusOK, Summary: "Erase completed"}
			})
			if err != nil {
				return err
			}

			rec := store.EraseRecord{
				Device:    e.cfg.Device,
				Timestamp: start,
				Success:   res.Err == nil,
				Duration:  time.Since(start).String(),
			}
			if res.Err != nil {
				rec.Error = res.Err.Error()
			}
			e.record(func(s *store.Store) error { return s.AddErase(rec) })

			if res.Err != nil {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the result instead of showing the progress view")
	return cmd
}

func newProgramCmd(e *env) *cobra.Command {
	var (
		plain    bool
		hexFiles []string
		binSpecs []string
	)
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Program hex and bin images into the target",
		Long: `Reset the target, load every --hex file and then every --bin file in the
order given, then reset and start the target. Bin files are given as
<path>@<address>, e.g. boot.bin@0x08000000.

Exits 1 when J-Link reports that programming failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bins := make([]jlink.BinFile, 0, len(binSpecs))
			for _, spec := range binSpecs {
				b, err := parseBinFile(spec)
				if err != nil {
					return err
				}
				bins = append(bins, b)
			}
			if len(hexFiles) == 0 && len(bins) == 0 {
				return fmt.Errorf("nothing to program: pass --hex and/or --bin")
			}

			ctl, err := e.controller(cmd.Context())
			if err != nil {
				return err
			}

			var outcome jlink.Outcome
			start := time.Now()
			res, err := runOperation(cmd, plain, "Program "+e.cfg.Device, func(ctx context.Context) app.Result {
				var perr error
				outcome, perr = ctl.Program(ctx, hexFiles, bins)
				return programResult(outcome, perr, hexFiles, bins)
			})
			if err != nil {
				return err
			}

			rec := store.FlashRecord{
				Device:    e.cfg.Device,
				Timestamp: start,
				Success:   res.Err == nil && outcome.OK(),
				Outcome:   outcome.String(),
				Duration:  time.Since(start).String(),
				HexFiles:  absAll(hexFiles),
			}
			for _, b := range bins {
				rec.BinFiles = append(rec.BinFiles, fmt.Sprintf("%s@0x%08X", absPath(b.Path), b.Address))
			}
			if res.Err != nil {
				rec.Error = res.Err.Error()
			}
			e.record(func(s *store.Store) error { return s.AddFlash(rec) })

			if !rec.Success {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&hexFiles, "hex", nil, "hex file to load (repeatable)")
	cmd.Flags().StringArrayVar(&binSpecs, "bin", nil, "bin file to load as <path>@<address> (repeatable)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the result instead of showing the progress view")
	return cmd
}

func programResult(outcome jlink.Outcome, err error, hexFiles []string, bins []jlink.BinFile) app.Result {
	var details []string
	for _, f := range hexFiles {
		details = append(details, "hex "+f)
	}
	for _, b := range bins {
		details = append(details, fmt.Sprintf("bin %s @ 0x%08X", b.Path, b.Address))
	}

	if err != nil {
		return app.Result{Status: app.StatusFailed, Summary: "Programming did not complete", Details: details, Err: err}
	}
	switch outcome {
	case jlink.OutcomeSuccess:
		return app.Result{Status: app.StatusOK, Summary: "Target programmed", Details: details}
	case jlink.OutcomeAlreadyProgrammed:
		return app.Result{Status: app.StatusSkipped, Summary: "Target already programmed", Details: details}
	default:
		return app.Result{Status: app.StatusFailed, Summary: "Programming target failed", Details: details}
	}
}

// parseBinFile parses <path>@<address>. The address accepts 0x, 0o, 0b
// prefixes or decimal and must fit in 32 bits.
func parseBinFile(spec string) (jlink.BinFile, error) {
	i := strings.LastIndex(spec, "@")
	if i <= 0 || i == len(spec)-1 {
		return jlink.BinFile{}, fmt.Errorf("bin %q: expected <path>@<address>", spec)
	}
	addr, err := strconv.ParseUint(spec[i+1:], 0, 32)
	if err != nil {
		return jlink.BinFile{}, fmt.Errorf("bin %q: bad address: %w", spec, err)
	}
	return jlink.BinFile{Path: spec[:i], Address: uint32(addr)}, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func absAll(paths []string) []string {
	var out []string
	for _, p := range paths {
		out = append(out, absPath(p))
	}
	return out
}
