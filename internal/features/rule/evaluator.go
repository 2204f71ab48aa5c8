package rule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vowops/internal/resolver"
)

// EvalDetail records the outcome of one condition check.
type EvalDetail struct {
	Field         string      `json:"field"`
	Operator      Operator    `json:"operator"`
	ExpectedValue interface{} `json:"expectedValue"`
	ActualValue   interface{} `json:"actualValue"`
	Result        bool        `json:"result"`
	Reason        string      `json:"reason,omitempty"`
}

type EvalResult struct {
	Matches bool         `json:"matches"`
	Details []EvalDetail `json:"details"`
}

// ValueLookup resolves a field reference to (value, found). The batch
// processor passes a closure backed by its shared pre-resolved map.
type ValueLookup func(reference string) (interface{}, bool)

// Evaluator checks a rule's condition list against resolved field values.
// All conditions must pass (AND); evaluation is fail-fast, so conditions past
// the first failure are never evaluated and cause no resolver side effects.
type Evaluator struct {
	Resolver *resolver.Resolver
}

func NewEvaluator(res *resolver.Resolver) *Evaluator {
	return &Evaluator{Resolver: res}
}

// Evaluate resolves each condition field through the resolver directly.
func (e *Evaluator) Evaluate(ctx context.Context, conditions []Condition, formID string, data map[string]interface{}) EvalResult {
	return e.EvaluateWith(conditions, func(reference string) (interface{}, bool) {
		return e.Resolver.Resolve(ctx, formID, reference, data)
	})
}

// EvaluateWith is the core loop. An empty condition list is an automatic
// match.
func (e *Evaluator) EvaluateWith(conditions []Condition, lookup ValueLookup) EvalResult {
	result := EvalResult{Matches: true}
	if len(conditions) == 0 {
		return result
	}

	for _, cond := range conditions {
		actual, found := lookup(cond.Field)
		pass, reason := applyOperator(cond.Operator, actual, found, cond.Value)

		result.Details = append(result.Details, EvalDetail{
			Field:         cond.Field,
			Operator:      cond.Operator,
			ExpectedValue: cond.Value,
			ActualValue:   actual,
			Result:        pass,
			Reason:        reason,
		})

		if !pass {
			result.Matches = false
			return result
		}
	}
	return result
}

// applyOperator evaluates one predicate. Presence operators work on the
// (value, found) pair; all other operators fail unconditionally when the
// field cannot be resolved. Operands are normalized to strings, or numbers
// for the ordering operators, to avoid type mismatches between submitted
// strings and rule-authored literals.
func applyOperator(op Operator, actual interface{}, found bool, expected interface{}) (bool, string) {
	switch op {
	case OperatorExists:
		if !found {
			return false, "field not found"
		}
		return true, ""
	case OperatorNotExists:
		if found {
			return false, "field exists"
		}
		return true, ""
	case OperatorIsEmpty:
		if isEmptyValue(actual, found) {
			return true, ""
		}
		return false, "value is not empty"
	case OperatorIsNotEmpty:
		if isEmptyValue(actual, found) {
			return false, "value is empty"
		}
		return true, ""
	}

	if !found {
		return false, "field not found"
	}

	switch op {
	case OperatorGreaterThan, OperatorLessThan:
		a, aok := toNumber(actual)
		b, bok := toNumber(expected)
		if !aok || !bok {
			return false, "non-numeric comparison"
		}
		if op == OperatorGreaterThan {
			if a > b {
				return true, ""
			}
			return false, fmt.Sprintf("%v is not greater than %v", actual, expected)
		}
		if a < b {
			return true, ""
		}
		return false, fmt.Sprintf("%v is not less than %v", actual, expected)
	}

	a := normalize(actual)
	b := normalize(expected)

	switch op {
	case OperatorEquals:
		if a == b {
			return true, ""
		}
		return false, fmt.Sprintf("%q does not equal %q", a, b)
	case OperatorNotEquals:
		if a != b {
			return true, ""
		}
		return false, fmt.Sprintf("%q equals %q", a, b)
	case OperatorContains:
		if strings.Contains(a, b) {
			return true, ""
		}
		return false, fmt.Sprintf("%q does not contain %q", a, b)
	case OperatorNotContains:
		if !strings.Contains(a, b) {
			return true, ""
		}
		return false, fmt.Sprintf("%q contains %q", a, b)
	case OperatorStartsWith:
		if strings.HasPrefix(a, b) {
			return true, ""
		}
		return false, fmt.Sprintf("%q does not start with %q", a, b)
	case OperatorEndsWith:
		if strings.HasSuffix(a, b) {
			return true, ""
		}
		return false, fmt.Sprintf("%q does not end with %q", a, b)
	}

	return false, fmt.Sprintf("unknown operator %q", op)
}

func normalize(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func isEmptyValue(v interface{}, found bool) bool {
	return !found || v == nil || normalize(v) == ""
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(normalize(v)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
