//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext returns a context canceled on an interrupt. Windows has
// no SIGTERM, so only os.Interrupt is registered. The render paths poll
// the context between expression compiles, so a Ctrl-C lands at the
// next compile boundary. Call stop to restore default signal handling.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
