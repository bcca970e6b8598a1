package jlink

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Script is a J-Link Commander script materialized in a temporary file. The
// file exists from BuildScript until Release.
type Script struct {
	path  string
	lines []string
	once  sync.Once
	err   error
}

// BuildScript writes commands, newline-joined and in order, to a new
// uniquely named temporary file. The caller must call Release.
func BuildScript(commands []string) (*Script, error) {
	f, err := os.CreateTemp("", "jflash-*.jlink")
	if err != nil {
		return nil, fmt.Errorf("create script file: %w", err)
	}

	_, werr := f.WriteString(strings.Join(commands, "\n"))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("write script file: %w", err)
	}

	return &Script{
		path:  f.Name(),
		lines: append([]string(nil), commands...),
	}, nil
}

// Path returns the location of the script file.
func (s *Script) Path() string { return s.path }

// Lines returns a copy of the commands in script order.
func (s *Script) Lines() []string {
	return append([]string(nil), s.lines...)
}

// Release deletes the script file. It is safe to call more than once.
func (s *Script) Release() error {
	s.once.Do(func() {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			s.err = fmt.Errorf("remove script file: %w", err)
		}
	})
	return s.err
}
