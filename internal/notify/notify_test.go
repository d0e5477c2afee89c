package notify

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/manav03panchal/dailyclocks/internal/config"
	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 3, 1, 9, 25, 0, 0, time.UTC)

func fastHTTP() config.HTTPConfig {
	return config.HTTPConfig{
		Timeout:     2 * time.Second,
		MaxRetries:  3,
		RetryDelays: []time.Duration{0, 0, 0},
	}
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		webhookType string
		expected    string
	}{
		{WebhookTypeDiscord, "*notify.DiscordFormatter"},
		{WebhookTypeSlack, "*notify.SlackFormatter"},
		{WebhookTypeGeneric, "*notify.GenericFormatter"},
		{"unknown", "*notify.GenericFormatter"},
		{"", "*notify.GenericFormatter"},
	}

	for _, tt := range tests {
		t.Run(tt.webhookType, func(t *testing.T) {
			assert.Equal(t, tt.expected, fmt.Sprintf("%T", GetFormatter(tt.webhookType)))
		})
	}
}

func TestGenericFormatter(t *testing.T) {
	n := CompletionNotification("Focus", testTime)

	t.Run("default_payload", func(t *testing.T) {
		payload, err := (&GenericFormatter{}).Format(n)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, "timer_completed", got["type"])
		assert.Equal(t, "Focus is done.", got["message"])
		assert.Equal(t, "2026-03-01T09:25:00Z", got["timestamp"])
	})

	t.Run("template", func(t *testing.T) {
		payload, err := NewGenericFormatter(`{"text":"{{.Message}}"}`).Format(n)
		require.NoError(t, err)
		assert.JSONEq(t, `{"text":"Focus is done."}`, string(payload))
	})

	t.Run("invalid_template", func(t *testing.T) {
		_, err := NewGenericFormatter(`{{.Message`).Format(n)
		assert.Error(t, err)
	})
}

func TestSlackFormatter(t *testing.T) {
	payload, err := (&SlackFormatter{}).Format(CompletionNotification("Focus", testTime))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"text":"Timer complete"`)
	assert.Contains(t, string(payload), `"color":"#10B981"`)
	assert.Contains(t, string(payload), `*Timer*\nFocus`)
}

func TestDiscordFormatter(t *testing.T) {
	payload, err := (&DiscordFormatter{}).Format(CompletionNotification("Focus", testTime))
	require.NoError(t, err)

	var got discordPayload
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Focus is done.", got.Embeds[0].Description)
	assert.Equal(t, DefaultColor, got.Embeds[0].Color)
	assert.Equal(t, "Timer", got.Embeds[0].Fields[0].Name)
}

func TestColorToHex(t *testing.T) {
	assert.Equal(t, "#10B981", colorToHex(0x10B981))
	assert.Equal(t, "#000000", colorToHex(0))
}

// =============================================================================
// HTTP Client Tests
// =============================================================================

func TestHTTPClientSend(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		result := NewHTTPClient(fastHTTP()).Send(context.Background(), srv.URL, "application/json", []byte(`{}`))
		require.NoError(t, result.Error)
		assert.Equal(t, 1, result.Attempts)
		assert.Equal(t, `{}`, string(gotBody))
	})

	t.Run("retries_server_errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		result := NewHTTPClient(fastHTTP()).Send(context.Background(), srv.URL, "application/json", nil)
		require.NoError(t, result.Error)
		assert.Equal(t, 3, result.Attempts)
	})

	t.Run("client_error_not_retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		result := NewHTTPClient(fastHTTP()).Send(context.Background(), srv.URL, "application/json", nil)
		assert.Error(t, result.Error)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
	})

	t.Run("gives_up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		result := NewHTTPClient(fastHTTP()).Send(context.Background(), srv.URL, "application/json", nil)
		assert.Error(t, result.Error)
		assert.Equal(t, 3, result.Attempts)
	})
}

// =============================================================================
// Sink Tests
// =============================================================================

func TestWebhookSink(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testTime)

	t.Run("posts_payload", func(t *testing.T) {
		received := make(chan []byte, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			received <- body
		}))
		defer srv.Close()

		sink := NewWebhookSink(config.NotifyConfig{WebhookURL: srv.URL}, NewHTTPClient(fastHTTP()), clock)
		sink.NotifyCompletion(context.Background(), "Focus")

		select {
		case body := <-received:
			assert.Contains(t, string(body), "Focus is done.")
		default:
			t.Fatal("webhook not called")
		}
	})

	t.Run("failure_is_recoverable_error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		sink := NewWebhookSink(config.NotifyConfig{WebhookURL: srv.URL}, NewHTTPClient(fastHTTP()), clock)
		err := sink.Send(context.Background(), "Focus")
		require.Error(t, err)
		assert.True(t, apperrors.IsRecoverableError(err))

		// Logged, not returned.
		sink.NotifyCompletion(context.Background(), "Focus")
	})
}

func TestBellSink(t *testing.T) {
	var buf bytes.Buffer
	NewBellSink(&buf).NotifyCompletion(context.Background(), "Focus")
	assert.Equal(t, "\a", buf.String())
}

func TestMultiSink(t *testing.T) {
	var mu sync.Mutex
	var got []string
	record := func(name string) Sink {
		return SinkFunc(func(_ context.Context, label string) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, name+":"+label)
		})
	}

	MultiSink{record("a"), record("b")}.NotifyCompletion(context.Background(), "Focus")
	assert.ElementsMatch(t, []string{"a:Focus", "b:Focus"}, got)
}

func TestFromConfig(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testTime)

	t.Run("nothing_enabled", func(t *testing.T) {
		cfg := config.DefaultRuntimeConfig()
		cfg.Notify.Bell = false
		cfg.Notify.Audio = false
		assert.IsType(t, NopSink{}, FromConfig(cfg, nil, clock))
	})

	t.Run("bell_only", func(t *testing.T) {
		cfg := config.DefaultRuntimeConfig()
		cfg.Notify.Audio = false
		assert.IsType(t, &BellSink{}, FromConfig(cfg, &bytes.Buffer{}, clock))
	})

	t.Run("all", func(t *testing.T) {
		cfg := config.DefaultRuntimeConfig()
		cfg.Notify.WebhookURL = "http://localhost:1/hook"
		sink, ok := FromConfig(cfg, &bytes.Buffer{}, clock).(MultiSink)
		require.True(t, ok)
		assert.Len(t, sink, 3)
	})
}

func TestTone(t *testing.T) {
	pcm := Tone(ToneFrequency, 100*time.Millisecond)
	require.Len(t, pcm, SampleRate/10*2)

	// Fades in from silence.
	assert.Equal(t, int16(0), int16(binary.LittleEndian.Uint16(pcm[0:2])))

	var peak int16
	for i := 0; i < len(pcm); i += 2 {
		if v := int16(binary.LittleEndian.Uint16(pcm[i:])); v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, int16(8000))
	assert.Less(t, peak, int16(11000))

	assert.Empty(t, Tone(ToneFrequency, 0))
}

func TestNopSink(t *testing.T) {
	NopSink{}.NotifyCompletion(context.Background(), "Focus")
}
