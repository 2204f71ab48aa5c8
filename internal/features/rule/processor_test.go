package rule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vowops/internal/config"
	"vowops/internal/resolver"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRuleRepo struct {
	rules []EmailRule
	err   error
}

func (f *fakeRuleRepo) Create(ctx context.Context, rule *EmailRule) error          { return nil }
func (f *fakeRuleRepo) GetByID(ctx context.Context, id string) (*EmailRule, error) { return nil, nil }
func (f *fakeRuleRepo) List(ctx context.Context, formID string) ([]EmailRule, error) {
	return f.rules, nil
}
func (f *fakeRuleRepo) Update(ctx context.Context, rule *EmailRule) error       { return nil }
func (f *fakeRuleRepo) Delete(ctx context.Context, id string) error             { return nil }
func (f *fakeRuleRepo) Enable(ctx context.Context, id string, active bool) error { return nil }

func (f *fakeRuleRepo) GetActiveByForm(ctx context.Context, formID string) ([]EmailRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) FormFields(ctx context.Context, formID string) ([]resolver.FieldDef, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return nil, nil
}

func testProcessor(repo RuleRepository, source resolver.FieldSource) *Processor {
	cache := resolver.NewResolutionCache(5*time.Minute, nil)
	res := resolver.New(source, cache, nil, zap.NewNop())
	cfg := &config.Config{
		BatchSize:        5,
		BatchTimeoutCap:  30 * time.Second,
		RuleFetchTimeout: 5 * time.Second,
	}
	return NewProcessor(repo, NewEvaluator(res), res, cfg, zap.NewNop())
}

func namedRule(name string, conditions ...Condition) EmailRule {
	return EmailRule{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Active:     true,
		Conditions: conditions,
	}
}

func TestProcessFormMatchingSubsetInOrder(t *testing.T) {
	repo := &fakeRuleRepo{rules: []EmailRule{
		namedRule("always"),
		namedRule("type match", Condition{Field: "ceremonyType", Operator: OperatorEquals, Value: "elopement"}),
		namedRule("type mismatch", Condition{Field: "ceremonyType", Operator: OperatorEquals, Value: "vow renewal"}),
		namedRule("big party", Condition{Field: "guestCount", Operator: OperatorGreaterThan, Value: 50}),
		namedRule("unresolvable", Condition{Field: "officiantTier", Operator: OperatorEquals, Value: "gold"}),
	}}

	p := testProcessor(repo, &countingSource{})
	data := map[string]interface{}{
		"ceremonyType": "elopement",
		"guestCount":   120,
	}

	matched := p.ProcessForm(context.Background(), "run-1", "f1", data)

	want := []string{"always", "type match", "big party"}
	if len(matched) != len(want) {
		t.Fatalf("got %d matches, want %d", len(matched), len(want))
	}
	for i, name := range want {
		if matched[i].Name != name {
			t.Errorf("matched[%d] = %q, want %q", i, matched[i].Name, name)
		}
	}
}

func TestProcessFormSpansBatches(t *testing.T) {
	// 12 rules means batches of 5, 5 and 2; every rule must still be
	// evaluated and ordering preserved across batch boundaries.
	var rules []EmailRule
	for i := 0; i < 12; i++ {
		rules = append(rules, namedRule(
			fmt.Sprintf("rule-%02d", i),
			Condition{Field: "guestCount", Operator: OperatorGreaterThan, Value: i * 10},
		))
	}
	repo := &fakeRuleRepo{rules: rules}

	p := testProcessor(repo, &countingSource{})
	matched := p.ProcessForm(context.Background(), "run-1", "f1", map[string]interface{}{"guestCount": 75})

	// guestCount 75 beats thresholds 0..70, i.e. rules 0-7.
	if len(matched) != 8 {
		t.Fatalf("got %d matches, want 8", len(matched))
	}
	for i, r := range matched {
		want := fmt.Sprintf("rule-%02d", i)
		if r.Name != want {
			t.Errorf("matched[%d] = %q, want %q", i, r.Name, want)
		}
	}
}

func TestProcessFormFetchErrorYieldsNoMatches(t *testing.T) {
	repo := &fakeRuleRepo{err: errors.New("mongo down")}
	p := testProcessor(repo, &countingSource{})

	if matched := p.ProcessForm(context.Background(), "run-1", "f1", nil); matched != nil {
		t.Errorf("got %d matches on fetch error, want none", len(matched))
	}
}

func TestProcessFormNoActiveRules(t *testing.T) {
	p := testProcessor(&fakeRuleRepo{}, &countingSource{})
	if matched := p.ProcessForm(context.Background(), "run-1", "f1", nil); matched != nil {
		t.Errorf("got %d matches for empty rule set, want none", len(matched))
	}
}

func TestProcessFormSharesFieldResolution(t *testing.T) {
	// Ten rules referencing the same unknown field: the field definitions
	// must be fetched once, not once per rule.
	var rules []EmailRule
	for i := 0; i < 10; i++ {
		rules = append(rules, namedRule(
			fmt.Sprintf("r%d", i),
			Condition{Field: "venueStyle", Operator: OperatorEquals, Value: "garden"},
		))
	}
	source := &countingSource{}
	p := testProcessor(&fakeRuleRepo{rules: rules}, source)

	p.ProcessForm(context.Background(), "run-1", "f1", map[string]interface{}{})

	if source.calls != 1 {
		t.Errorf("field source called %d times, want 1", source.calls)
	}
}

func TestProcessFormLogsCallerCorrelationID(t *testing.T) {
	// The pipeline mints one correlation id per processing run; the
	// processor must log under that id, not one of its own.
	core, logs := observer.New(zap.InfoLevel)
	cache := resolver.NewResolutionCache(5*time.Minute, nil)
	res := resolver.New(&countingSource{}, cache, nil, zap.NewNop())
	cfg := &config.Config{
		BatchSize:        5,
		BatchTimeoutCap:  30 * time.Second,
		RuleFetchTimeout: 5 * time.Second,
	}
	p := NewProcessor(&fakeRuleRepo{rules: []EmailRule{namedRule("always")}}, NewEvaluator(res), res, cfg, zap.New(core))

	p.ProcessForm(context.Background(), "run-42", "f1", map[string]interface{}{})

	entries := logs.FilterMessage("rule processing complete").All()
	if len(entries) != 1 {
		t.Fatalf("got %d completion log lines, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["correlationId"]; got != "run-42" {
		t.Errorf("correlationId = %v, want %q", got, "run-42")
	}
}

// stallingValue delays string normalization long enough to push a batch past
// its deadline.
type stallingValue struct{ delay time.Duration }

func (v stallingValue) String() string {
	time.Sleep(v.delay)
	return "barn"
}

func TestProcessFormTimedOutBatchContributesNoMatches(t *testing.T) {
	// Three batches of one rule each. The middle rule's value stalls past
	// the batch deadline; it would match if evaluation finished, so its
	// absence below can only come from the timeout. The surrounding
	// batches must still produce their matches, in order.
	rules := []EmailRule{
		namedRule("first", Condition{Field: "ceremonyType", Operator: OperatorEquals, Value: "elopement"}),
		namedRule("stalled", Condition{Field: "venueStyle", Operator: OperatorEquals, Value: "barn"}),
		namedRule("third", Condition{Field: "guestCount", Operator: OperatorGreaterThan, Value: 50}),
	}
	cache := resolver.NewResolutionCache(5*time.Minute, nil)
	res := resolver.New(&countingSource{}, cache, nil, zap.NewNop())
	cfg := &config.Config{
		BatchSize:        1,
		BatchTimeoutCap:  30 * time.Millisecond,
		RuleFetchTimeout: 5 * time.Second,
	}
	p := NewProcessor(&fakeRuleRepo{rules: rules}, NewEvaluator(res), res, cfg, zap.NewNop())

	data := map[string]interface{}{
		"ceremonyType": "elopement",
		"venueStyle":   stallingValue{delay: 500 * time.Millisecond},
		"guestCount":   120,
	}
	matched := p.ProcessForm(context.Background(), "run-1", "f1", data)

	want := []string{"first", "third"}
	if len(matched) != len(want) {
		t.Fatalf("got %d matches, want %d", len(matched), len(want))
	}
	for i, name := range want {
		if matched[i].Name != name {
			t.Errorf("matched[%d] = %q, want %q", i, matched[i].Name, name)
		}
	}
}

func TestProcessBatchExpiredContextContributesNoMatches(t *testing.T) {
	p := testProcessor(&fakeRuleRepo{}, &countingSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := []EmailRule{namedRule("always")}
	matched := p.processBatch(ctx, zap.NewNop(), "f1", batch, map[string]interface{}{})

	if len(matched) != len(batch) {
		t.Fatalf("got %d results, want %d", len(matched), len(batch))
	}
}
