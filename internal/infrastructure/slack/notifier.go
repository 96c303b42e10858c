// Package slack pushes digests to a Slack incoming webhook.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"FieldOps/internal/ports"
)

// Notifier posts digest text to a webhook URL.
type Notifier struct {
	webhookURL string
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier binds the webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

// PublishDigest sends digest as a plain webhook message.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n == nil || n.webhookURL == "" {
		return fmt.Errorf("slack notifier misconfigured")
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{Text: digest}); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}
