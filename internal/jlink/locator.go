package jlink

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
)

// DefaultExeNames maps a GOOS value to the name SEGGER ships the J-Link
// Commander executable under on that system. Add an entry to support a new
// host; callers never branch on the OS themselves.
var DefaultExeNames = map[string]string{
	"linux":   "JLinkExe",
	"darwin":  "JLinkExe",
	"windows": "JLink.exe",
}

// ResolveToolPath joins dir with exeName, or with the default executable name
// for the running OS when exeName is empty. An empty dir leaves the name to be
// looked up in PATH.
func ResolveToolPath(exeName, dir string) (string, error) {
	return resolveFor(runtime.GOOS, exeName, dir)
}

func resolveFor(goos, exeName, dir string) (string, error) {
	if exeName == "" {
		name, ok := DefaultExeNames[goos]
		if !ok {
			return "", &UnsupportedPlatformError{GOOS: goos}
		}
		exeName = name
	}
	if dir == "" {
		return exeName, nil
	}
	return filepath.Join(dir, exeName), nil
}

// ValidateTool launches the tool once with the "?" argument and waits for it
// to exit. Only a failure to spawn is reported; the exit status is ignored.
func ValidateTool(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, path, "?")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return &ToolNotFoundError{Path: path, Err: err}
	}
	// The help screen may exit non-zero; reaching here means the binary exists.
	_ = cmd.Wait()
	return nil
}
