package resolver

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	common_models "vowops/internal/common/models"

	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeSource struct {
	mu     sync.Mutex
	fields map[string][]FieldDef
	calls  int
	err    error
}

func (s *fakeSource) FormFields(ctx context.Context, formID string) ([]FieldDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.fields[formID], nil
}

func newTestResolver(source *fakeSource, clock Clock) *Resolver {
	return New(source, NewResolutionCache(5*time.Minute, clock), clock, zap.NewNop())
}

func inquiryFields() []FieldDef {
	return []FieldDef{
		{ID: "field_a1", Label: "Your Name", StableID: "coupleName", Mapping: "name"},
		{ID: "field_a2", Label: "Email Address", StableID: "contactEmail", Mapping: "email"},
		{ID: "field_a3", Label: "Guest Count", StableID: "guestCount"},
		{ID: "field_a4", Label: "Venue Preference", Mapping: "custom", CustomKey: "venue"},
	}
}

func TestResolveStrategies(t *testing.T) {
	data := map[string]interface{}{
		"field_a1": "Dana Reyes",
		"field_a2": "dana@example.com",
		"field_a3": 75,
		"field_a4": "beach",
		"fname":    "Dana",
		common_models.MappedFieldsKey: map[string]common_models.MappedField{
			"email": {FieldID: "field_a2", Value: "dana@example.com", DisplayKey: "email"},
		},
	}

	tests := []struct {
		name      string
		reference string
		want      interface{}
		wantFound bool
	}{
		{"mapped display key", "email", "dana@example.com", true},
		{"mapped key case-insensitive", "EMAIL", "dana@example.com", true},
		{"direct field id", "field_a1", "Dana Reyes", true},
		{"stable id", "guestCount", 75, true},
		{"label exact", "Your Name", "Dana Reyes", true},
		{"label camel-cased", "yourName", "Dana Reyes", true},
		{"custom key", "venue", "beach", true},
		{"mapping type", "name", "Dana Reyes", true},
		{"common alias", "firstName", "Dana", true},
		{"substring last resort", "a3", 75, true},
		{"miss", "officiantPreference", nil, false},
		{"empty reference", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{fields: map[string][]FieldDef{"f1": inquiryFields()}}
			r := newTestResolver(source, newFakeClock(time.Now()))

			got, found := r.Resolve(context.Background(), "f1", tt.reference, data)
			if found != tt.wantFound {
				t.Fatalf("Resolve(%q) found = %v, want %v", tt.reference, found, tt.wantFound)
			}
			if found && got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.reference, got, tt.want)
			}
		})
	}
}

func TestResolveSpecialVariables(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	clock := newFakeClock(at)
	r := newTestResolver(&fakeSource{}, clock)
	ctx := context.Background()

	t.Run("timestamp is epoch millis", func(t *testing.T) {
		got, found := r.Resolve(ctx, "f1", "timestamp", map[string]interface{}{})
		if !found {
			t.Fatal("timestamp not resolved")
		}
		want := strconv.FormatInt(at.UnixMilli(), 10)
		if got != want {
			t.Errorf("timestamp = %v, want %v", got, want)
		}
	})

	t.Run("leadId from data", func(t *testing.T) {
		got, found := r.Resolve(ctx, "f1", "leadId", map[string]interface{}{"leadId": "ld42"})
		if !found || got != "ld42" {
			t.Errorf("leadId = %v, %v; want ld42, true", got, found)
		}
	})

	t.Run("leadId recovered from tracking token", func(t *testing.T) {
		got, found := r.Resolve(ctx, "f1", "leadId", map[string]interface{}{"trackingToken": "ld42-1700000000000"})
		if !found || got != "ld42" {
			t.Errorf("leadId = %v, %v; want ld42, true", got, found)
		}
	})

	t.Run("trackingToken generated from leadId", func(t *testing.T) {
		got, found := r.Resolve(ctx, "f1", "trackingToken", map[string]interface{}{"id": "ld42"})
		want := "ld42-" + strconv.FormatInt(at.UnixMilli(), 10)
		if !found || got != want {
			t.Errorf("trackingToken = %v, %v; want %v, true", got, found, want)
		}
	})

	t.Run("specials are never cached", func(t *testing.T) {
		before, _ := r.Resolve(ctx, "f1", "timestamp", map[string]interface{}{})
		clock.Advance(time.Second)
		after, _ := r.Resolve(ctx, "f1", "timestamp", map[string]interface{}{})
		if before == after {
			t.Error("timestamp did not advance between calls")
		}
	})
}

func TestResolveCachesOutcomes(t *testing.T) {
	source := &fakeSource{fields: map[string][]FieldDef{"f1": inquiryFields()}}
	r := newTestResolver(source, newFakeClock(time.Now()))
	ctx := context.Background()
	data := map[string]interface{}{"field_a3": 10}

	if _, found := r.Resolve(ctx, "f1", "guestCount", data); !found {
		t.Fatal("first resolve missed")
	}
	callsAfterFirst := source.calls

	// Second resolve must hit the value cache, not the field source.
	if _, found := r.Resolve(ctx, "f1", "guestCount", data); !found {
		t.Fatal("second resolve missed")
	}
	if source.calls != callsAfterFirst {
		t.Errorf("field source called %d times after cached resolve, want %d", source.calls, callsAfterFirst)
	}
}

func TestResolveCachesMisses(t *testing.T) {
	source := &fakeSource{fields: map[string][]FieldDef{"f1": inquiryFields()}}
	r := newTestResolver(source, newFakeClock(time.Now()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, found := r.Resolve(ctx, "f1", "nothingHere", map[string]interface{}{}); found {
			t.Fatal("expected a miss")
		}
	}
	if source.calls != 1 {
		t.Errorf("field source called %d times for a repeated miss, want 1", source.calls)
	}
}

func TestResolveSourceFailureDegrades(t *testing.T) {
	source := &fakeSource{err: errors.New("mongo down")}
	r := newTestResolver(source, newFakeClock(time.Now()))

	// Strategies that need field definitions come up empty, but direct data
	// access still works.
	got, found := r.Resolve(context.Background(), "f1", "field_x", map[string]interface{}{"field_x": "v"})
	if !found || got != "v" {
		t.Errorf("Resolve = %v, %v; want v, true", got, found)
	}
	if _, found := r.Resolve(context.Background(), "f1", "someStableId", map[string]interface{}{}); found {
		t.Error("expected miss when field source is down")
	}
}

func TestClassifyReference(t *testing.T) {
	tests := []struct {
		reference string
		want      RefKind
	}{
		{"field_abc123", RefIdentifier},
		{"Partner One Email", RefLabel},
		{"partnerOneEmail", RefStableID},
	}
	for _, tt := range tests {
		if got := ClassifyReference(tt.reference); got.Kind != tt.want {
			t.Errorf("ClassifyReference(%q).Kind = %v, want %v", tt.reference, got.Kind, tt.want)
		}
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Partner One Email", "partnerOneEmail"},
		{"guest count", "guestCount"},
		{"EMAIL", "email"},
		{"already", "already"},
		{"  spaced  out  ", "spacedOut"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := camelCase(tt.in); got != tt.want {
			t.Errorf("camelCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
