package notify

import (
	"context"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/manav03panchal/dailyclocks/internal/config"
)

// Sink receives timer completion events. Implementations must not assume
// their caller waits for them; failures are logged, never returned.
type Sink interface {
	NotifyCompletion(ctx context.Context, label string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, label string)

// NotifyCompletion calls f.
func (f SinkFunc) NotifyCompletion(ctx context.Context, label string) {
	f(ctx, label)
}

// NopSink drops every event.
type NopSink struct{}

// NotifyCompletion does nothing.
func (NopSink) NotifyCompletion(context.Context, string) {}

// MultiSink delivers each event to every sink concurrently and waits for
// all of them.
type MultiSink []Sink

// NotifyCompletion fans the event out.
func (m MultiSink) NotifyCompletion(ctx context.Context, label string) {
	var wg sync.WaitGroup
	for _, s := range m {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			s.NotifyCompletion(ctx, label)
		}(s)
	}
	wg.Wait()
}

// FromConfig builds the sinks enabled in cfg. The bell is written to out.
func FromConfig(cfg *config.RuntimeConfig, out io.Writer, clock clockwork.Clock) Sink {
	var sinks MultiSink

	if cfg.Notify.Bell && out != nil {
		sinks = append(sinks, NewBellSink(out))
	}
	if cfg.Notify.Audio {
		sinks = append(sinks, NewAudioSink(cfg.Notify.AlertDuration))
	}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, NewWebhookSink(cfg.Notify, NewHTTPClient(cfg.HTTP), clock))
	}

	switch len(sinks) {
	case 0:
		return NopSink{}
	case 1:
		return sinks[0]
	}
	return sinks
}
