package email

import (
	"context"
	"fmt"

	"vowops/internal/config"
	"vowops/pkg/retry"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"
)

// ResendTransport is the fallback transport used when SMTP delivery fails
// persistently.
type ResendTransport struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendTransport(cfg *config.Config, log *zap.Logger) *ResendTransport {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &ResendTransport{client: client, from: cfg.ResendFrom, log: log}
}

func (t *ResendTransport) Name() string { return "resend" }

func (t *ResendTransport) Send(ctx context.Context, email *Email) error {
	if t.client == nil {
		return retry.NewPermanentError(fmt.Errorf("resend: %w", ErrNotConfigured))
	}

	from := email.From
	if from == "" {
		from = t.from
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Cc:      email.Cc,
		Bcc:     email.Bcc,
		Subject: email.Subject,
		Html:    email.HtmlBody,
		Text:    email.TextBody,
	}

	sent, err := t.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: send failed: %w", err)
	}

	t.log.Debug("resend accepted message", zap.String("providerId", sent.Id))
	return nil
}
