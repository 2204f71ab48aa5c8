package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"sync/atomic"
	"time"

	"vowops/internal/config"
	"vowops/pkg/retry"

	"crypto/tls"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// SMTPTransport is the primary transport. Connection establishment runs
// through a circuit breaker so a misconfigured or unreachable server is not
// re-dialed on every submission; once the breaker opens, sends fail fast
// until the backoff window elapses.
type SMTPTransport struct {
	cfg     *config.Config
	breaker *gobreaker.CircuitBreaker
	state   atomic.Int32
	log     *zap.Logger
}

func NewSMTPTransport(cfg *config.Config, log *zap.Logger) *SMTPTransport {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-connect",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("smtp connect breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &SMTPTransport{cfg: cfg, breaker: breaker, log: log}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// State reports the most recent send attempt's progress.
func (t *SMTPTransport) State() SendState { return SendState(t.state.Load()) }

func (t *SMTPTransport) Send(ctx context.Context, email *Email) error {
	if t.cfg.SMTPHost == "" {
		return retry.NewPermanentError(fmt.Errorf("smtp: %w", ErrNotConfigured))
	}

	t.state.Store(int32(StateNotInitialized))

	clientAny, err := t.breaker.Execute(func() (interface{}, error) {
		t.state.Store(int32(StateInitializing))
		return t.connect(ctx)
	})
	if err != nil {
		t.state.Store(int32(StateFailed))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("smtp: connection attempts suppressed: %w", err)
		}
		return fmt.Errorf("smtp: connect failed: %w", err)
	}

	client := clientAny.(*smtp.Client)
	defer client.Close()
	t.state.Store(int32(StateReady))

	t.state.Store(int32(StateSending))
	if err := t.transmit(client, email); err != nil {
		t.state.Store(int32(StateFailed))
		return fmt.Errorf("smtp: send failed: %w", err)
	}
	_ = client.Quit()

	t.state.Store(int32(StateSucceeded))
	return nil
}

func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", t.cfg.SMTPHost, t.cfg.SMTPPort)
	dialer := net.Dialer{Timeout: t.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: t.cfg.SMTPHost}); err != nil {
			client.Close()
			return nil, err
		}
	}

	if t.cfg.SMTPUsername != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUsername, t.cfg.SMTPPassword, t.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, err
		}
	}

	return client, nil
}

func (t *SMTPTransport) transmit(client *smtp.Client, email *Email) error {
	from := email.From
	if from == "" {
		from = t.cfg.SMTPFrom
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	// BCC recipients get an envelope rcpt but no header line.
	recipients := make([]string, 0, len(email.To)+len(email.Cc)+len(email.Bcc))
	recipients = append(recipients, email.To...)
	recipients = append(recipients, email.Cc...)
	recipients = append(recipients, email.Bcc...)
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte(buildMessage(from, email))); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func buildMessage(from string, email *Email) string {
	contentType := "text/html; charset=\"UTF-8\""
	body := email.HtmlBody
	if body == "" {
		contentType = "text/plain; charset=\"UTF-8\""
		body = email.TextBody
	}

	headers := []struct{ key, value string }{
		{"From", from},
		{"To", strings.Join(email.To, ", ")},
		{"Cc", strings.Join(email.Cc, ", ")},
		{"Subject", email.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", contentType},
	}

	var msg strings.Builder
	for _, h := range headers {
		if h.value == "" {
			continue
		}
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h.key, h.value))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.String()
}
