package jlink

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds erase, program and raw command runs.
	DefaultTimeout = 60 * time.Second
	// ConnectTimeout bounds the connectivity check.
	ConnectTimeout = 5 * time.Second
)

type options struct {
	timeout        time.Duration
	connectTimeout time.Duration
	log            *logrus.Entry
}

func defaultOptions() options {
	return options{
		timeout:        DefaultTimeout,
		connectTimeout: ConnectTimeout,
	}
}

// Option configures a Controller.
type Option func(*options)

// WithTimeout sets the timeout for erase, program and RunCommands calls made
// with DefaultTimeout. Zero or less disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithConnectTimeout sets the timeout for IsConnected. Zero or less disables
// the limit.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = d
	}
}

// WithLogger sets the log entry the controller and its runner write to.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		o.log = log
	}
}
