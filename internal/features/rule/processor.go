package rule

import (
	"context"
	"time"

	"vowops/internal/config"
	"vowops/internal/resolver"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// perRuleEvalTimeout scales the batch deadline with the batch size.
const perRuleEvalTimeout = 2 * time.Second

// Processor fetches the active rules of a form and evaluates them against a
// submission in fixed-size batches. Field references are pre-resolved once
// per batch and shared across the batch's rules, so resolution work is
// O(unique fields) instead of O(rules x conditions).
type Processor struct {
	rules     RuleRepository
	evaluator *Evaluator
	resolver  *resolver.Resolver
	cfg       *config.Config
	log       *zap.Logger
}

func NewProcessor(rules RuleRepository, evaluator *Evaluator, res *resolver.Resolver, cfg *config.Config, log *zap.Logger) *Processor {
	return &Processor{
		rules:     rules,
		evaluator: evaluator,
		resolver:  res,
		cfg:       cfg,
		log:       log,
	}
}

// ProcessForm returns the matching subset of the form's active rules, in
// fetch order. Every failure inside rule processing is isolated: a fetch
// timeout yields an empty set, a timed-out batch contributes zero matches,
// and a panicking rule counts as a non-match. The submission itself is never
// failed from here.
// The caller's correlation id ties the processing log lines to the delivery
// records produced from the same run.
func (p *Processor) ProcessForm(ctx context.Context, correlationID, formID string, data map[string]interface{}) []EmailRule {
	log := p.log.With(
		zap.String("correlationId", correlationID),
		zap.String("formId", formID),
	)

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.RuleFetchTimeout)
	defer cancel()

	rules, err := p.rules.GetActiveByForm(fetchCtx, formID)
	if err != nil {
		log.Error("fetching active rules failed, skipping email processing", zap.Error(err))
		return nil
	}
	if len(rules) == 0 {
		return nil
	}

	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	var matching []EmailRule
	for start := 0; start < len(rules); start += batchSize {
		end := min(start+batchSize, len(rules))
		batch := rules[start:end]

		matched := p.processBatch(ctx, log, formID, batch, data)
		for i, ok := range matched {
			if ok {
				matching = append(matching, batch[i])
			}
		}
	}

	log.Info("rule processing complete",
		zap.Int("rules", len(rules)),
		zap.Int("matching", len(matching)))
	return matching
}

// processBatch pre-resolves the union of referenced fields, then evaluates
// the batch's rules concurrently under a size-scaled deadline. A timed-out
// batch is abandoned: its goroutines run on without effect on the result.
func (p *Processor) processBatch(ctx context.Context, log *zap.Logger, formID string, batch []EmailRule, data map[string]interface{}) []bool {
	shared := p.resolveBatchFields(ctx, formID, batch, data)

	lookup := func(reference string) (interface{}, bool) {
		if v, ok := shared[reference]; ok {
			return v.Value, v.Found
		}
		return p.resolver.Resolve(ctx, formID, reference, data)
	}

	timeout := min(time.Duration(len(batch))*perRuleEvalTimeout, p.cfg.BatchTimeoutCap)
	batchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	matched := make([]bool, len(batch))
	var g errgroup.Group
	for i := range batch {
		r := batch[i]
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("rule evaluation panicked, treating as non-match",
						zap.String("rule", r.Name),
						zap.Any("panic", rec))
				}
			}()
			result := p.evaluator.EvaluateWith(r.Conditions, lookup)
			matched[i] = result.Matches
			if !result.Matches && len(result.Details) > 0 {
				last := result.Details[len(result.Details)-1]
				log.Debug("rule did not match",
					zap.String("rule", r.Name),
					zap.String("field", last.Field),
					zap.String("reason", last.Reason))
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return matched
	case <-batchCtx.Done():
		log.Warn("rule batch timed out, batch contributes no matches",
			zap.Int("batchSize", len(batch)),
			zap.Duration("timeout", timeout))
		return make([]bool, len(batch))
	}
}

// resolveBatchFields resolves each distinct referenced field once, building
// the value map every rule in the batch shares.
func (p *Processor) resolveBatchFields(ctx context.Context, formID string, batch []EmailRule, data map[string]interface{}) map[string]resolver.ValueResult {
	shared := make(map[string]resolver.ValueResult)
	for _, r := range batch {
		for _, cond := range r.Conditions {
			if cond.Field == "" {
				continue
			}
			if _, seen := shared[cond.Field]; seen {
				continue
			}
			value, found := p.resolver.Resolve(ctx, formID, cond.Field, data)
			shared[cond.Field] = resolver.ValueResult{Value: value, Found: found}
		}
	}
	return shared
}
