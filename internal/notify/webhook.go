package notify

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/manav03panchal/dailyclocks/internal/config"
	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/logging"
)

// WebhookSink posts a completion payload to a URL.
type WebhookSink struct {
	url       string
	formatter Formatter
	client    *HTTPClient
	clock     clockwork.Clock
}

// NewWebhookSink creates a webhook sink from the notify configuration.
func NewWebhookSink(cfg config.NotifyConfig, client *HTTPClient, clock clockwork.Clock) *WebhookSink {
	var formatter Formatter
	if cfg.WebhookTemplate != "" && (cfg.WebhookType == "" || cfg.WebhookType == WebhookTypeGeneric) {
		formatter = NewGenericFormatter(cfg.WebhookTemplate)
	} else {
		formatter = GetFormatter(cfg.WebhookType)
	}
	return &WebhookSink{
		url:       cfg.WebhookURL,
		formatter: formatter,
		client:    client,
		clock:     clock,
	}
}

// Send delivers the completion payload for label and returns the failure
// after the last attempt.
func (w *WebhookSink) Send(ctx context.Context, label string) error {
	payload, err := w.formatter.Format(CompletionNotification(label, w.clock.Now()))
	if err != nil {
		return apperrors.Wrap(err, "format webhook payload")
	}

	result := w.client.Send(ctx, w.url, w.formatter.ContentType(), payload)
	if result.Error != nil {
		re := apperrors.NewRecoverableError("webhook delivery failed", result.Error, w.client.maxRetries)
		re.RetryCount = result.Attempts
		re.CanRetry = false
		return re
	}
	return nil
}

// NotifyCompletion sends the payload and logs a failure.
func (w *WebhookSink) NotifyCompletion(ctx context.Context, label string) {
	if err := w.Send(ctx, label); err != nil {
		logging.WarnContext(ctx, "completion webhook failed",
			logging.KeyWebhook, logging.MaskURL(w.url),
			logging.KeyLabel, label,
			logging.KeyError, err)
	}
}
