package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PermanentError marks a failure that must not be retried (e.g. a transport
// that is not configured at all).
type PermanentError interface {
	error
	IsPermanent() bool
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string     { return e.err.Error() }
func (e *permanentError) IsPermanent() bool { return true }
func (e *permanentError) Unwrap() error     { return e.err }

func NewPermanentError(err error) PermanentError {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type Policy struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // backoff is BaseDelay * 2^(attempt-1)
	MaxDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 1,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Attempt runs fn up to 1+MaxRetries times with exponential backoff between
// attempts. A PermanentError stops the loop immediately.
func Attempt(ctx context.Context, policy Policy, fn func() error) error {
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 2 * time.Second
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 30 * time.Second
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.BaseDelay
	exp.MaxInterval = policy.MaxDelay
	exp.Multiplier = 2.0
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = exp
	b = backoff.WithContext(b, ctx)
	b = backoff.WithMaxRetries(b, uint64(policy.MaxRetries))

	operation := func() error {
		err := fn()
		if err == nil {
			return nil
		}

		var perm PermanentError
		if errors.As(err, &perm) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, b)
}
