package jlink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(dir string) (*Runner, *atomic.Int32) {
	r := NewRunner(filepath.Join(dir, fakeExeName), quietLog())
	kills := &atomic.Int32{}
	kill := r.kill
	r.kill = func(p *os.Process) error {
		kills.Add(1)
		return kill(p)
	}
	return r, kills
}

func writeScript(t *testing.T) string {
	t.Helper()
	s, err := BuildScript([]string{"connect", "q"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Release() })
	return s.Path()
}

func TestRunMergesStderrIntoOutput(t *testing.T) {
	dir := fakeTool(t, "echo to-stdout; echo to-stderr 1>&2")
	r, _ := newTestRunner(dir)

	out, err := r.Run(context.Background(), writeScript(t), nil, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, string(out), "to-stdout")
	assert.Contains(t, string(out), "to-stderr")
}

func TestRunPassesFixedArgsThenScript(t *testing.T) {
	dir := fakeTool(t, `echo "$@"`)
	r, _ := newTestRunner(dir)
	script := writeScript(t)

	out, err := r.Run(context.Background(), script, []string{"-device", "LPC1343", "-if", "SWD", "-speed", "1000"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "-device LPC1343 -if SWD -speed 1000 "+script+"\n", string(out))
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	dir := fakeTool(t, "echo Script processing completed.; exit 1")
	r, _ := newTestRunner(dir)

	out, err := r.Run(context.Background(), writeScript(t), nil, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Script processing completed.")
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	dir := fakeTool(t, "echo started; exec sleep 30")
	r, kills := newTestRunner(dir)

	start := time.Now()
	out, err := r.Run(context.Background(), writeScript(t), nil, 200*time.Millisecond)

	var te *TimeoutExceededError
	require.True(t, errors.As(err, &te), "expected TimeoutExceededError, got %v", err)
	assert.Equal(t, 200*time.Millisecond, te.Timeout)
	assert.Nil(t, out, "no partial output on timeout")
	assert.Equal(t, int32(1), kills.Load())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunWatchdogFiringFirstIsTimeout(t *testing.T) {
	dir := fakeTool(t, "exec sleep 30")
	r, kills := newTestRunner(dir)
	timers := &manualTimers{immediate: true}
	r.afterFunc = timers.afterFunc

	_, err := r.Run(context.Background(), writeScript(t), nil, time.Hour)

	var te *TimeoutExceededError
	require.True(t, errors.As(err, &te), "expected TimeoutExceededError, got %v", err)
	assert.Equal(t, int32(1), kills.Load())
	require.Len(t, timers.timers, 1)
}

func TestRunLateWatchdogIsNoop(t *testing.T) {
	dir := fakeTool(t, "echo done")
	r, kills := newTestRunner(dir)
	timers := &manualTimers{}
	r.afterFunc = timers.afterFunc

	out, err := r.Run(context.Background(), writeScript(t), nil, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(out))

	require.Len(t, timers.timers, 1)
	assert.True(t, timers.timers[0].stopped.Load(), "watchdog cancelled after natural exit")

	// A timer that fires anyway must neither kill nor report.
	timers.timers[0].fire()
	assert.Equal(t, int32(0), kills.Load())
}

func TestRunWithoutTimeoutArmsNoWatchdog(t *testing.T) {
	dir := fakeTool(t, "echo done")
	r, _ := newTestRunner(dir)
	timers := &manualTimers{}
	r.afterFunc = timers.afterFunc

	_, err := r.Run(context.Background(), writeScript(t), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, timers.timers)
}

func TestRunContextCancelKillsProcess(t *testing.T) {
	dir := fakeTool(t, "exec sleep 30")
	r, kills := newTestRunner(dir)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := r.Run(ctx, writeScript(t), nil, 0)

	var pe *ProcessExecutionError
	require.True(t, errors.As(err, &pe), "expected ProcessExecutionError, got %v", err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), kills.Load())
}

func TestRunStartFailure(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "missing"), quietLog())

	out, err := r.Run(context.Background(), "script.jlink", nil, time.Second)

	var pe *ProcessExecutionError
	require.True(t, errors.As(err, &pe), "expected ProcessExecutionError, got %v", err)
	assert.Equal(t, "start", pe.Op)
	assert.Nil(t, out)
}

func TestWatchdogRace(t *testing.T) {
	var kills int
	w := &watchdog{kill: func() { kills++ }}
	assert.Equal(t, watchdogFinished, w.finish())
	w.fire(watchdogTimedOut)
	assert.Equal(t, 0, kills, "fire after finish is a no-op")

	w = &watchdog{kill: func() { kills++ }}
	w.fire(watchdogTimedOut)
	w.fire(watchdogTimedOut)
	w.fire(watchdogCanceled)
	assert.Equal(t, 1, kills, "only the first fire kills")
	assert.Equal(t, watchdogTimedOut, w.finish())
}

func TestCaptureStateString(t *testing.T) {
	assert.Equal(t, "not captured", captureNone.String())
	assert.Equal(t, "partial", captureStreaming.String())
	assert.Equal(t, "complete", captureComplete.String())
}
