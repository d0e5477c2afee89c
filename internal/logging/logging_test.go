package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelWarn, cfg.Level)
	assert.False(t, cfg.JSON)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.True(t, cfg.AddSource)
}

func TestInit(t *testing.T) {
	t.Run("text_config", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: slog.LevelInfo, Output: &buf})

		Info("hello", KeyTimerID, "abc")
		assert.Contains(t, buf.String(), "hello")
		assert.Contains(t, buf.String(), "timer_id=abc")
		assert.False(t, Debug)
	})

	t.Run("json_config", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: slog.LevelDebug, JSON: true, Output: &buf})

		DebugLog("tick", KeyRemaining, 42)
		assert.Contains(t, buf.String(), `"remaining":42`)
		assert.True(t, Debug)
	})

	t.Run("level_filters", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: slog.LevelWarn, Output: &buf})

		Info("hidden")
		Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("nil_output_uses_stderr", func(t *testing.T) {
		Init(Config{Level: slog.LevelInfo})
		assert.NotNil(t, Logger())
	})
}

func TestDiscard(t *testing.T) {
	Discard()
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, JSON: true, Output: &buf})

	LogOperation("rollover", KeyDate, "2026-01-02")
	assert.Contains(t, buf.String(), `"op":"rollover"`)
	assert.Contains(t, buf.String(), `"date":"2026-01-02"`)
}

// =============================================================================
// Context Tests
// =============================================================================

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	assert.Len(t, id1, 16)
	assert.NotEqual(t, id1, id2)
}

func TestRequestIDFromContext(t *testing.T) {
	t.Run("nil_context", func(t *testing.T) {
		//nolint:staticcheck
		assert.Empty(t, RequestIDFromContext(nil))
	})

	t.Run("no_request_id", func(t *testing.T) {
		assert.Empty(t, RequestIDFromContext(context.Background()))
	})

	t.Run("with_request_id", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "abc123")
		assert.Equal(t, "abc123", RequestIDFromContext(ctx))
	})

	t.Run("generated", func(t *testing.T) {
		assert.Len(t, RequestIDFromContext(NewRequestContext()), 16)
	})
}

func TestContextLogging(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, JSON: true, Output: &buf})

	ctx := WithRequestID(context.Background(), "req-1")

	t.Run("package_functions_carry_request_id", func(t *testing.T) {
		buf.Reset()
		WarnContext(ctx, "write failed")
		assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	})

	t.Run("context_logger", func(t *testing.T) {
		buf.Reset()
		cl := FromContext(ctx).With(KeyLabel, "Focus")
		cl.Info("started")
		assert.Contains(t, buf.String(), `"label":"Focus"`)
		assert.Contains(t, buf.String(), `"request_id":"req-1"`)
		assert.Equal(t, "req-1", cl.RequestID())
	})

	t.Run("nil_context_is_background", func(t *testing.T) {
		//nolint:staticcheck
		cl := FromContext(nil)
		assert.Empty(t, cl.RequestID())
	})
}

// =============================================================================
// Mask Tests
// =============================================================================

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://short.io/x", MaskURL("https://short.io/x"))

	long := "https://hooks.example.com/services/T000/B000/secret-token"
	masked := MaskURL(long)
	assert.Equal(t, long[:URLMaskLength]+"***", masked)
	assert.NotContains(t, masked, "secret-token")
}

func TestMaskString(t *testing.T) {
	t.Run("no_urls", func(t *testing.T) {
		assert.Equal(t, "plain message", MaskString("plain message"))
	})

	t.Run("with_url", func(t *testing.T) {
		result := MaskString("posting to https://example.com/api/v1/webhook/secret-token-12345")
		assert.Contains(t, result, "posting to")
		assert.Contains(t, result, "***")
		assert.NotContains(t, result, "secret-token-12345")
	})

	t.Run("with_localhost", func(t *testing.T) {
		msg := "posting to http://localhost:8080/api/very/long/path/for/testing"
		assert.Equal(t, msg, MaskString(msg))
	})
}
