package template

import (
	"context"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"
)

// Enrich runs a template's enrichment script against the submission and
// returns derived variables to merge into the mapped-value layer. The script
// sees a `submission` map of string values and assigns its results to a
// `derived` map, e.g.:
//
//	text := import("text")
//	parts := text.split(submission.name, " ")
//	derived := {firstName: parts[0]}
//
// A script failure only costs the derived variables; rendering proceeds with
// the base layers.
func Enrich(ctx context.Context, src string, data map[string]interface{}, log *zap.Logger) map[string]string {
	if strings.TrimSpace(src) == "" {
		return nil
	}

	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("text", "times", "fmt"))

	if err := script.Add("submission", scriptView(data)); err != nil {
		log.Warn("enrichment script rejected submission data", zap.Error(err))
		return nil
	}

	compiled, err := script.RunContext(ctx)
	if err != nil {
		log.Warn("enrichment script failed", zap.Error(err))
		return nil
	}

	raw, ok := compiled.Get("derived").Value().(map[string]interface{})
	if !ok {
		return nil
	}

	derived := make(map[string]string, len(raw))
	for k, v := range raw {
		derived[k] = stringify(v)
	}
	return derived
}

// scriptView exposes the raw answers as plain strings; the side-structures
// are not scriptable.
func scriptView(data map[string]interface{}) map[string]interface{} {
	view := make(map[string]interface{}, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, "__") {
			continue
		}
		view[k] = stringify(v)
	}
	return view
}
