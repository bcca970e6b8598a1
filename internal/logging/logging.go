// Package logging owns the process-wide logrus logger. Init is called once by
// the CLI; library code asks For a component entry and never configures
// logging itself.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options selects how log output is rendered.
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger = newLogger(Options{Level: "warn"})
)

func newLogger(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

// Init replaces the process logger. An unknown level falls back to info.
func Init(opts Options) {
	l := newLogger(opts)
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the process logger.
func Logger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// For returns an entry tagged with the given component name.
func For(component string) *logrus.Entry {
	return Logger().WithField("component", component)
}
