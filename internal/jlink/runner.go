package jlink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// defaultWaitDelay bounds how long Wait keeps draining the output pipe after
// the process is gone.
const defaultWaitDelay = 2 * time.Second

// timer is the part of *time.Timer the watchdog needs.
type timer interface {
	Stop() bool
}

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Runner spawns the J-Link executable against a script file and captures its
// merged stdout/stderr.
type Runner struct {
	path      string
	log       *logrus.Entry
	waitDelay time.Duration
	afterFunc func(time.Duration, func()) timer
	kill      func(*os.Process) error
}

// NewRunner creates a Runner for the tool at path.
func NewRunner(path string, log *logrus.Entry) *Runner {
	return &Runner{
		path:      path,
		log:       log,
		waitDelay: defaultWaitDelay,
		afterFunc: realAfterFunc,
		kill:      (*os.Process).Kill,
	}
}

// captureState tracks how far output collection got, so failure logging
// never reports output that was not produced.
type captureState int

const (
	captureNone captureState = iota
	captureStreaming
	captureComplete
)

func (s captureState) String() string {
	switch s {
	case captureStreaming:
		return "partial"
	case captureComplete:
		return "complete"
	default:
		return "not captured"
	}
}

// invocation is the per-call state owned by a single Run.
type invocation struct {
	args    []string
	timeout time.Duration
	output  bytes.Buffer
	state   captureState
}

// Run executes the tool with fixedArgs followed by scriptPath and returns the
// combined output once the process has exited and the stream is drained.
// A timeout of zero or less waits without bound. When the timeout elapses
// first the process is killed and a *TimeoutExceededError is returned with no
// output. A non-zero exit status is not an error.
func (r *Runner) Run(ctx context.Context, scriptPath string, fixedArgs []string, timeout time.Duration) ([]byte, error) {
	inv := &invocation{
		args:    append(append([]string(nil), fixedArgs...), scriptPath),
		timeout: timeout,
	}

	cmd := exec.Command(r.path, inv.args...)
	// One writer for both streams: exec copies them through a single pipe.
	cmd.Stdout = &inv.output
	cmd.Stderr = &inv.output
	cmd.WaitDelay = r.waitDelay

	if err := ctx.Err(); err != nil {
		return nil, r.fail(inv, "start", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, r.fail(inv, "start", err)
	}
	inv.state = captureStreaming

	r.log.WithFields(logrus.Fields{
		"pid":     cmd.Process.Pid,
		"script":  scriptPath,
		"timeout": timeout,
	}).Debug("J-Link process started")

	wd := &watchdog{kill: func() {
		if err := r.kill(cmd.Process); err != nil {
			r.log.WithError(err).Debug("kill J-Link process")
		}
	}}
	if timeout > 0 {
		t := r.afterFunc(timeout, func() { wd.fire(watchdogTimedOut) })
		defer t.Stop()
	}
	stopCtx := context.AfterFunc(ctx, func() { wd.fire(watchdogCanceled) })
	defer stopCtx()

	waitErr := cmd.Wait()

	switch wd.finish() {
	case watchdogTimedOut:
		r.log.WithFields(logrus.Fields{
			"timeout": timeout,
			"output":  inv.state.String(),
		}).Warn("J-Link process exceeded timeout, killed")
		return nil, &TimeoutExceededError{Timeout: timeout}
	case watchdogCanceled:
		return nil, r.fail(inv, "wait", ctx.Err())
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, r.fail(inv, "wait", waitErr)
		}
		r.log.WithField("exit_code", exitErr.ExitCode()).Debug("J-Link exited with non-zero status")
	}

	inv.state = captureComplete
	r.log.Debugf("J-Link response: %s", inv.output.String())
	return inv.output.Bytes(), nil
}

func (r *Runner) fail(inv *invocation, op string, err error) error {
	entry := r.log.WithError(err).WithFields(logrus.Fields{
		"op":     op,
		"args":   inv.args,
		"output": inv.state.String(),
	})
	if inv.state == captureStreaming {
		entry = entry.WithField("partial_bytes", inv.output.Len())
	}
	entry.Debug("J-Link execution failed")
	return &ProcessExecutionError{Op: op, Err: err}
}

const (
	watchdogArmed int32 = iota
	watchdogTimedOut
	watchdogCanceled
	watchdogFinished
)

// watchdog resolves the race between natural process exit and a kill
// request. Exactly one of fire or finish wins; the loser is a no-op.
type watchdog struct {
	state atomic.Int32
	kill  func()
}

// fire kills the process if it has not already finished or been killed.
func (w *watchdog) fire(reason int32) {
	if w.state.CompareAndSwap(watchdogArmed, reason) {
		w.kill()
	}
}

// finish marks the process as exited and reports who won the race.
func (w *watchdog) finish() int32 {
	if w.state.CompareAndSwap(watchdogArmed, watchdogFinished) {
		return watchdogFinished
	}
	return w.state.Load()
}
