package template

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestEnrich(t *testing.T) {
	data := map[string]interface{}{
		"name":           "Dana Reyes",
		"guestCount":     120,
		"__mappedFields": map[string]interface{}{"secret": "hidden"},
	}

	t.Run("derives variables", func(t *testing.T) {
		src := `
text := import("text")
parts := text.split(submission.name, " ")
derived := {firstName: parts[0], lastName: parts[1]}
`
		got := Enrich(context.Background(), src, data, zap.NewNop())
		if got["firstName"] != "Dana" || got["lastName"] != "Reyes" {
			t.Errorf("derived = %v, want firstName Dana and lastName Reyes", got)
		}
	})

	t.Run("values arrive as strings", func(t *testing.T) {
		src := `derived := {count: submission.guestCount + " guests"}`
		got := Enrich(context.Background(), src, data, zap.NewNop())
		if got["count"] != "120 guests" {
			t.Errorf("count = %q, want %q", got["count"], "120 guests")
		}
	})

	t.Run("side structures are not scriptable", func(t *testing.T) {
		src := `derived := {leak: submission["__mappedFields"]}`
		got := Enrich(context.Background(), src, data, zap.NewNop())
		if got["leak"] != "" && got["leak"] != "<nil>" {
			t.Errorf("side structure leaked into script: %q", got["leak"])
		}
	})

	t.Run("empty script", func(t *testing.T) {
		if got := Enrich(context.Background(), "  ", data, zap.NewNop()); got != nil {
			t.Errorf("Enrich on blank script = %v, want nil", got)
		}
	})

	t.Run("broken script yields nothing", func(t *testing.T) {
		if got := Enrich(context.Background(), "derived := nope(", data, zap.NewNop()); got != nil {
			t.Errorf("Enrich on broken script = %v, want nil", got)
		}
	})

	t.Run("script without derived yields nothing", func(t *testing.T) {
		if got := Enrich(context.Background(), `x := 1`, data, zap.NewNop()); got != nil {
			t.Errorf("Enrich without derived = %v, want nil", got)
		}
	})
}
