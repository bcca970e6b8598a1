package jlink

import (
	"fmt"
	"time"
)

// UnsupportedPlatformError indicates that no default J-Link executable name is
// known for the host operating system.
type UnsupportedPlatformError struct {
	GOOS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported system: %s", e.GOOS)
}

// ToolNotFoundError indicates that the J-Link executable could not be launched
// from the resolved path.
type ToolNotFoundError struct {
	Path string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("'%s' missing, ensure the J-Link folder is in your system path: %v", e.Path, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// TimeoutExceededError indicates that the tool ran longer than the allowed
// duration and was killed.
type TimeoutExceededError struct {
	Timeout time.Duration
}

func (e *TimeoutExceededError) Error() string {
	return fmt.Sprintf("J-Link process exceeded timeout of %s", e.Timeout)
}

// ProcessExecutionError wraps an unexpected failure while spawning or talking
// to the tool process.
type ProcessExecutionError struct {
	Op  string
	Err error
}

func (e *ProcessExecutionError) Error() string {
	return fmt.Sprintf("J-Link script execution failed (%s): %v", e.Op, e.Err)
}

func (e *ProcessExecutionError) Unwrap() error { return e.Err }

// ConfigError reports an invalid probe configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid probe config: %s %s", e.Field, e.Message)
}
