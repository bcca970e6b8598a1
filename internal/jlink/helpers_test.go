package jlink

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const fakeExeName = "JLinkExe"

// fakeTool writes a shell script standing in for J-Link Commander into a temp
// dir. It answers the "?" probe with exit 0, copies the script it was given to
// <dir>/script.jlink, records its path in <dir>/script.path and then runs body
// with $script set to the script path.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake J-Link tool is a shell script")
	}

	dir := t.TempDir()
	src := strings.Join([]string{
		"#!/bin/sh",
		`if [ "$1" = "?" ]; then exit 0; fi`,
		`for script; do :; done`,
		`cp "$script" "` + filepath.Join(dir, "script.jlink") + `"`,
		`printf '%s' "$script" > "` + filepath.Join(dir, "script.path") + `"`,
		body,
		"",
	}, "\n")

	if err := os.WriteFile(filepath.Join(dir, fakeExeName), []byte(src), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func recordedScript(t *testing.T, dir string) (path string, lines []string) {
	t.Helper()
	p, err := os.ReadFile(filepath.Join(dir, "script.path"))
	if err != nil {
		t.Fatalf("fake tool did not record script path: %v", err)
	}
	body, err := os.ReadFile(filepath.Join(dir, "script.jlink"))
	if err != nil {
		t.Fatalf("fake tool did not copy script: %v", err)
	}
	return string(p), strings.Split(string(body), "\n")
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeTimer lets a test decide when the watchdog fires.
type fakeTimer struct {
	fire    func()
	stopped atomic.Bool
}

func (f *fakeTimer) Stop() bool { return !f.stopped.Swap(true) }

// manualTimers records every watchdog timer the runner arms.
type manualTimers struct {
	timers []*fakeTimer
	// immediate fires the watchdog as soon as it is armed.
	immediate bool
}

func (m *manualTimers) afterFunc(_ time.Duration, f func()) timer {
	ft := &fakeTimer{fire: f}
	m.timers = append(m.timers, ft)
	if m.immediate {
		go f()
	}
	return ft
}
