package email

import (
	"context"
	"errors"
)

// ErrNotConfigured marks a transport missing its credentials; it fails fast
// without retries.
var ErrNotConfigured = errors.New("transport not configured")

// Transport delivers one message. Implementations own their connection
// handling; Send must respect ctx deadlines.
type Transport interface {
	Name() string
	Send(ctx context.Context, email *Email) error
}
