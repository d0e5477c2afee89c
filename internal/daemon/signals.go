package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ShutdownSignals are the signals that stop the runner.
var ShutdownSignals = []os.Signal{
	syscall.SIGINT,  // Ctrl+C
	syscall.SIGTERM, // Termination request
	syscall.SIGHUP,  // Terminal hangup
}

// SignalHandler waits for a shutdown signal.
type SignalHandler struct {
	signals  chan os.Signal
	done     chan struct{}
	stopOnce sync.Once
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Setup registers for ShutdownSignals.
func (h *SignalHandler) Setup() {
	signal.Notify(h.signals, ShutdownSignals...)
}

// Deliver injects a signal as if the OS had sent it.
func (h *SignalHandler) Deliver(sig os.Signal) {
	select {
	case h.signals <- sig:
	default:
	}
}

// Wait blocks until a shutdown signal arrives, ctx is cancelled, or Stop is
// called. It returns nil unless a signal was received.
func (h *SignalHandler) Wait(ctx context.Context) os.Signal {
	select {
	case sig := <-h.signals:
		return sig
	case <-ctx.Done():
		return nil
	case <-h.done:
		return nil
	}
}

// Stop unregisters the handler and releases any waiter. Safe to call twice.
func (h *SignalHandler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.signals)
		close(h.done)
	})
}
