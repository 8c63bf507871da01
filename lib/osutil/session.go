package osutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is cancelled once Ctrl+C is pressed or
// the process receives SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// EnsureDir creates `dir` and its parents if they do not exist yet.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0777)
}
