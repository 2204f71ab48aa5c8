package email

import (
	"context"
	"time"

	"vowops/internal/config"
	"vowops/pkg/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DeliveryLog persists the lifecycle of each outbound message.
type DeliveryLog interface {
	Create(ctx context.Context, email *Email) error
	MarkSent(ctx context.Context, id primitive.ObjectID, transport string, attempts int) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, errMsg string) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus) error
}

// Dispatcher hands messages to the primary transport with retries, falling
// back to the secondary transport when the primary fails persistently. A
// token bucket caps outbound throughput and a semaphore caps concurrent
// in-flight sends.
type Dispatcher struct {
	primary    Transport
	fallback   Transport
	repo       DeliveryLog
	limiter    *rate.Limiter
	sem        chan struct{}
	policy     retry.Policy
	cmdTimeout time.Duration
	log        *zap.Logger
}

func NewDispatcher(cfg *config.Config, repo *EmailRepository, primary *SMTPTransport, fallback *ResendTransport, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		primary:  primary,
		fallback: fallback,
		repo:     repo,
		limiter:  rate.NewLimiter(rate.Limit(cfg.SendRate), int(cfg.SendRate)),
		sem:      make(chan struct{}, cfg.MaxConnections),
		policy: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
		},
		cmdTimeout: cfg.CommandTimeout,
		log:        log,
	}
}

// Send delivers one message synchronously and reports the outcome. Delivery
// failures are recorded, never propagated as errors: the caller's work is
// already done by the time a message reaches the dispatcher.
func (d *Dispatcher) Send(ctx context.Context, email *Email) SendResult {
	log := d.log.With(
		zap.String("correlationId", email.CorrelationID),
		zap.String("ruleId", email.RuleID),
		zap.Strings("to", email.To),
	)

	if err := d.repo.Create(ctx, email); err != nil {
		log.Error("failed to record outbound email", zap.Error(err))
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return d.fail(ctx, email, 0, err, log)
	}

	select {
	case d.sem <- struct{}{}:
		defer func() { <-d.sem }()
	case <-ctx.Done():
		return d.fail(ctx, email, 0, ctx.Err(), log)
	}

	if err := d.repo.UpdateStatus(ctx, email.ID, EmailSending); err != nil {
		log.Error("failed to update email status", zap.Error(err))
	}

	attempts := 0
	err := d.attempt(ctx, d.primary, email, &attempts)
	if err == nil {
		return d.succeed(ctx, email, d.primary.Name(), attempts, log)
	}

	log.Warn("primary transport failed, trying fallback",
		zap.String("transport", d.primary.Name()),
		zap.Int("attempts", attempts),
		zap.Error(err))

	if err := d.attempt(ctx, d.fallback, email, &attempts); err != nil {
		return d.fail(ctx, email, attempts, err, log)
	}
	return d.succeed(ctx, email, d.fallback.Name(), attempts, log)
}

// Reject records a message that never reached a transport, e.g. when no
// recipient could be resolved or the template is gone.
func (d *Dispatcher) Reject(ctx context.Context, email *Email, cause error) SendResult {
	log := d.log.With(
		zap.String("correlationId", email.CorrelationID),
		zap.String("ruleId", email.RuleID))

	if err := d.repo.Create(ctx, email); err != nil {
		log.Error("failed to record outbound email", zap.Error(err))
	}
	return d.fail(ctx, email, 0, cause, log)
}

func (d *Dispatcher) attempt(ctx context.Context, transport Transport, email *Email, attempts *int) error {
	return retry.Attempt(ctx, d.policy, func() error {
		*attempts++
		sendCtx, cancel := context.WithTimeout(ctx, d.cmdTimeout)
		defer cancel()
		return transport.Send(sendCtx, email)
	})
}

func (d *Dispatcher) succeed(ctx context.Context, email *Email, transport string, attempts int, log *zap.Logger) SendResult {
	if err := d.repo.MarkSent(ctx, email.ID, transport, attempts); err != nil {
		log.Error("failed to record delivery", zap.Error(err))
	}
	log.Info("email delivered",
		zap.String("transport", transport),
		zap.Int("attempts", attempts))
	return SendResult{Success: true, Transport: transport, Attempts: attempts}
}

func (d *Dispatcher) fail(ctx context.Context, email *Email, attempts int, cause error, log *zap.Logger) SendResult {
	if err := d.repo.MarkFailed(ctx, email.ID, attempts, cause.Error()); err != nil {
		log.Error("failed to record delivery failure", zap.Error(err))
	}
	log.Error("email delivery failed",
		zap.Int("attempts", attempts),
		zap.Error(cause))
	return SendResult{Attempts: attempts, Error: cause.Error()}
}
