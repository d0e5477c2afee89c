// Package notify delivers timer completion alerts: a terminal bell, a short
// synthesized tone, and an optional webhook.
package notify

import (
	"fmt"
	"time"
)

// Webhook payload types.
const (
	WebhookTypeGeneric = "generic"
	WebhookTypeSlack   = "slack"
	WebhookTypeDiscord = "discord"
)

// DefaultColor is the embed/attachment color of completion alerts.
const DefaultColor = 0x10B981

// Notification is the content of a webhook alert.
type Notification struct {
	Type      string
	Title     string
	Message   string
	Fields    map[string]string
	Timestamp time.Time
	Color     int
}

// CompletionNotification builds the alert for a timer that ran out.
func CompletionNotification(label string, at time.Time) *Notification {
	return &Notification{
		Type:      "timer_completed",
		Title:     "Timer complete",
		Message:   fmt.Sprintf("%s is done.", label),
		Fields:    map[string]string{"Timer": label},
		Timestamp: at,
		Color:     DefaultColor,
	}
}

// Formatter formats notifications for a specific webhook type.
type Formatter interface {
	// Format converts a notification into the webhook-specific payload.
	Format(n *Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the appropriate formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case WebhookTypeDiscord:
		return &DiscordFormatter{}
	case WebhookTypeSlack:
		return &SlackFormatter{}
	default:
		return &GenericFormatter{}
	}
}
