package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vowops/internal/config"
	"vowops/pkg/retry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type fakeTransport struct {
	name     string
	mu       sync.Mutex
	calls    int
	failures int // fail this many calls before succeeding
	err      error
}

func (t *fakeTransport) Name() string { return t.name }

func (t *fakeTransport) Send(ctx context.Context, email *Email) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return t.err
	}
	if t.calls <= t.failures {
		return errors.New("transient failure")
	}
	return nil
}

type fakeLog struct {
	mu      sync.Mutex
	created int
	sent    []string // transports of successful deliveries
	failed  []string // error messages of failures
}

func (l *fakeLog) Create(ctx context.Context, email *Email) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.created++
	email.ID = primitive.NewObjectID()
	return nil
}

func (l *fakeLog) MarkSent(ctx context.Context, id primitive.ObjectID, transport string, attempts int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, transport)
	return nil
}

func (l *fakeLog) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, errMsg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, errMsg)
	return nil
}

func (l *fakeLog) UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus) error {
	return nil
}

func testDispatcher(primary, fallback Transport, repo DeliveryLog) *Dispatcher {
	return &Dispatcher{
		primary:    primary,
		fallback:   fallback,
		repo:       repo,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		sem:        make(chan struct{}, 2),
		policy:     retry.Policy{MaxRetries: 1, BaseDelay: time.Millisecond},
		cmdTimeout: time.Second,
		log:        zap.NewNop(),
	}
}

func testEmail() *Email {
	return &Email{To: []string{"dana@example.com"}, Subject: "hi"}
}

func TestSendPrimarySucceeds(t *testing.T) {
	primary := &fakeTransport{name: "smtp"}
	fallback := &fakeTransport{name: "resend"}
	repo := &fakeLog{}
	d := testDispatcher(primary, fallback, repo)

	result := d.Send(context.Background(), testEmail())

	if !result.Success || result.Transport != "smtp" || result.Attempts != 1 {
		t.Errorf("result = %+v, want success via smtp in 1 attempt", result)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
	if len(repo.sent) != 1 || repo.sent[0] != "smtp" {
		t.Errorf("delivery log sent = %v, want [smtp]", repo.sent)
	}
}

func TestSendRetriesTransientFailure(t *testing.T) {
	primary := &fakeTransport{name: "smtp", failures: 1}
	d := testDispatcher(primary, &fakeTransport{name: "resend"}, &fakeLog{})

	result := d.Send(context.Background(), testEmail())

	if !result.Success || result.Transport != "smtp" {
		t.Fatalf("result = %+v, want success via smtp", result)
	}
	if result.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", result.Attempts)
	}
}

func TestSendFallsBackWhenPrimaryExhausted(t *testing.T) {
	primary := &fakeTransport{name: "smtp", err: errors.New("connection refused")}
	fallback := &fakeTransport{name: "resend"}
	repo := &fakeLog{}
	d := testDispatcher(primary, fallback, repo)

	result := d.Send(context.Background(), testEmail())

	if !result.Success || result.Transport != "resend" {
		t.Fatalf("result = %+v, want success via resend", result)
	}
	// MaxRetries 1 means two primary attempts before falling back.
	if primary.calls != 2 {
		t.Errorf("primary attempts = %d, want 2", primary.calls)
	}
	if len(repo.sent) != 1 || repo.sent[0] != "resend" {
		t.Errorf("delivery log sent = %v, want [resend]", repo.sent)
	}
}

func TestSendPermanentErrorSkipsRetries(t *testing.T) {
	primary := &fakeTransport{name: "smtp", err: retry.NewPermanentError(ErrNotConfigured)}
	fallback := &fakeTransport{name: "resend"}
	d := testDispatcher(primary, fallback, &fakeLog{})

	result := d.Send(context.Background(), testEmail())

	if primary.calls != 1 {
		t.Errorf("primary attempts = %d, want 1 for a permanent error", primary.calls)
	}
	if !result.Success || result.Transport != "resend" {
		t.Errorf("result = %+v, want fallback success", result)
	}
}

func TestSendBothTransportsFail(t *testing.T) {
	primary := &fakeTransport{name: "smtp", err: errors.New("down")}
	fallback := &fakeTransport{name: "resend", err: errors.New("also down")}
	repo := &fakeLog{}
	d := testDispatcher(primary, fallback, repo)

	result := d.Send(context.Background(), testEmail())

	if result.Success {
		t.Fatal("expected failure when both transports are down")
	}
	if result.Error == "" {
		t.Error("failed result carries no error message")
	}
	if len(repo.failed) != 1 {
		t.Errorf("delivery log failed = %v, want one entry", repo.failed)
	}
}

func TestRejectRecordsFailureWithoutTransports(t *testing.T) {
	primary := &fakeTransport{name: "smtp"}
	repo := &fakeLog{}
	d := testDispatcher(primary, &fakeTransport{name: "resend"}, repo)

	result := d.Reject(context.Background(), testEmail(), errors.New("no recipient email found"))

	if result.Success {
		t.Fatal("rejected message reported success")
	}
	if primary.calls != 0 {
		t.Errorf("transport called %d times for a rejected message", primary.calls)
	}
	if repo.created != 1 || len(repo.failed) != 1 {
		t.Errorf("delivery log created=%d failed=%v, want the rejection recorded", repo.created, repo.failed)
	}
	if result.Error != "no recipient email found" {
		t.Errorf("error = %q, want the rejection reason", result.Error)
	}
}

func TestNewDispatcherThrottleFromConfig(t *testing.T) {
	cfg := &config.Config{
		SendRate:       5,
		MaxConnections: 5,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		CommandTimeout: 10 * time.Second,
	}

	d := NewDispatcher(cfg, nil, nil, nil, zap.NewNop())

	if got := d.limiter.Limit(); got != rate.Limit(5) {
		t.Errorf("limiter rate = %v, want 5/s", got)
	}
	if got := d.limiter.Burst(); got != 5 {
		t.Errorf("limiter burst = %d, want 5", got)
	}
	if got := cap(d.sem); got != 5 {
		t.Errorf("connection pool cap = %d, want 5", got)
	}
}
