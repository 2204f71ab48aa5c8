package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	common_models "vowops/internal/common/models"

	"go.uber.org/zap"
)

// FieldDef is the resolver's view of a form field definition.
type FieldDef struct {
	ID        string
	Label     string
	StableID  string
	Mapping   string
	CustomKey string
	Type      string
}

// FieldSource fetches the field definitions of a form. Implemented by the form
// feature's repository adapter.
type FieldSource interface {
	FormFields(ctx context.Context, formID string) ([]FieldDef, error)
}

// Resolver maps a field reference (identifier, stable identifier or label) to
// the value present in a raw submission payload. Submission payloads are keyed
// by non-meaningful identifiers generated at form-build time, so anything
// authored against a human-meaningful name is resolved dynamically and
// degrades gracefully: a miss is (nil, false), never an error.
type Resolver struct {
	source FieldSource
	cache  *ResolutionCache
	clock  Clock
	log    *zap.Logger
}

func New(source FieldSource, cache *ResolutionCache, clock Clock, log *zap.Logger) *Resolver {
	if clock == nil {
		clock = SystemClock()
	}
	return &Resolver{source: source, cache: cache, clock: clock, log: log}
}

func (r *Resolver) Cache() *ResolutionCache { return r.cache }

// lookup carries per-resolution state through the strategy chain.
type lookup struct {
	ctx       context.Context
	formID    string
	reference string
	data      map[string]interface{}

	fields       []FieldDef
	fieldsLoaded bool
}

type strategy struct {
	name string
	fn   func(r *Resolver, l *lookup) (interface{}, bool)
}

// Tried in order, first hit wins.
var strategies = []strategy{
	{"special", (*Resolver).resolveSpecial},
	{"mappedFields", (*Resolver).resolveMapped},
	{"direct", (*Resolver).resolveDirect},
	{"stableIdIndex", (*Resolver).resolveStableIndex},
	{"fieldScan", (*Resolver).resolveFieldScan},
	{"commonName", (*Resolver).resolveCommonName},
	{"substring", (*Resolver).resolveSubstring},
}

// Resolve attempts each strategy in order and caches the outcome, misses
// included, so repeated lookups within a processing burst skip the scans.
func (r *Resolver) Resolve(ctx context.Context, formID, reference string, data map[string]interface{}) (interface{}, bool) {
	if reference == "" {
		return nil, false
	}

	// Computed variables depend on the current time, never cache them.
	if isSpecialReference(reference) {
		l := &lookup{ctx: ctx, formID: formID, reference: reference, data: data}
		return r.resolveSpecial(l)
	}

	if cached, ok := r.cache.Value(formID, reference); ok {
		return cached.Value, cached.Found
	}

	l := &lookup{ctx: ctx, formID: formID, reference: reference, data: data}
	for _, s := range strategies {
		if value, ok := s.fn(r, l); ok {
			r.cache.SetValue(formID, reference, ValueResult{Value: value, Found: true})
			return value, true
		}
	}

	r.log.Debug("field reference resolved to nothing",
		zap.String("formId", formID),
		zap.String("reference", reference))
	r.cache.SetValue(formID, reference, ValueResult{Found: false})
	return nil, false
}

func isSpecialReference(reference string) bool {
	switch reference {
	case "timestamp", "leadId", "trackingToken":
		return true
	}
	return false
}

// resolveSpecial handles the computed variables: timestamp, leadId and
// trackingToken. leadId may be parsed out of a "<leadId>-<timestamp>" token.
func (r *Resolver) resolveSpecial(l *lookup) (interface{}, bool) {
	switch l.reference {
	case "timestamp":
		return strconv.FormatInt(r.clock.Now().UnixMilli(), 10), true
	case "leadId":
		if id := leadIDOf(l.data); id != "" {
			return id, true
		}
		return nil, false
	case "trackingToken":
		if tok, ok := stringValue(l.data["trackingToken"]); ok && tok != "" {
			return tok, true
		}
		if id := leadIDOf(l.data); id != "" {
			return id + "-" + strconv.FormatInt(r.clock.Now().UnixMilli(), 10), true
		}
		return nil, false
	}
	return nil, false
}

func leadIDOf(data map[string]interface{}) string {
	for _, key := range []string{"id", "leadId", "lead_id", "submissionId"} {
		if s, ok := stringValue(data[key]); ok && s != "" {
			return s
		}
	}
	// trackingToken has the shape <leadId>-<timestamp>; the lead id is
	// everything before the final dash.
	if tok, ok := stringValue(data["trackingToken"]); ok {
		if i := strings.LastIndex(tok, "-"); i > 0 {
			return tok[:i]
		}
	}
	return ""
}

func stringValue(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// resolveMapped matches the reference against __mappedFields display keys,
// case-insensitively.
func (r *Resolver) resolveMapped(l *lookup) (interface{}, bool) {
	mapped := common_models.MappedFieldsOf(l.data)
	if mapped == nil {
		return nil, false
	}
	for _, mf := range mapped {
		if strings.EqualFold(mf.DisplayKey, l.reference) {
			return mf.Value, true
		}
	}
	return nil, false
}

func (r *Resolver) resolveDirect(l *lookup) (interface{}, bool) {
	if v, ok := l.data[l.reference]; ok {
		return v, true
	}
	return nil, false
}

// resolveStableIndex resolves through the cached stableId -> fieldId mapping.
func (r *Resolver) resolveStableIndex(l *lookup) (interface{}, bool) {
	mapping, ok := r.cache.Mapping(l.formID)
	if !ok {
		fields := r.formFields(l)
		mapping = make(map[string]string, len(fields))
		for _, f := range fields {
			if f.StableID != "" {
				mapping[f.StableID] = f.ID
			}
		}
		r.cache.SetMapping(l.formID, mapping)
	}

	fieldID, ok := mapping[l.reference]
	if !ok {
		return nil, false
	}
	v, ok := l.data[fieldID]
	return v, ok
}

// resolveFieldScan walks all field definitions and matches the reference
// against stable identifier, mapping type (or custom key) and label, the
// label both exactly and camelCase-normalized.
func (r *Resolver) resolveFieldScan(l *lookup) (interface{}, bool) {
	ref := ClassifyReference(l.reference)
	normalized := camelCase(l.reference)

	for _, f := range r.formFields(l) {
		match := false
		switch {
		case ref.Kind == RefIdentifier && f.ID == l.reference:
			match = true
		case f.StableID != "" && strings.EqualFold(f.StableID, l.reference):
			match = true
		case f.Mapping != "" && f.Mapping != "custom" && strings.EqualFold(f.Mapping, l.reference):
			match = true
		case f.CustomKey != "" && strings.EqualFold(f.CustomKey, l.reference):
			match = true
		case f.Label != "" && (strings.EqualFold(f.Label, l.reference) || camelCase(f.Label) == normalized):
			match = true
		}
		if !match {
			continue
		}
		if v, ok := l.data[f.ID]; ok {
			return v, true
		}
	}
	return nil, false
}

// resolveCommonName tries canonical alias spellings for the contact fields
// rule authors reference most, directly against the submission keys.
func (r *Resolver) resolveCommonName(l *lookup) (interface{}, bool) {
	aliases, ok := commonAliases[camelCase(l.reference)]
	if !ok {
		return nil, false
	}
	for _, alias := range aliases {
		if v, ok := l.data[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// resolveSubstring is the last resort: any submission key whose name contains
// the reference, case-insensitively. Side-structure keys are skipped.
func (r *Resolver) resolveSubstring(l *lookup) (interface{}, bool) {
	needle := strings.ToLower(l.reference)
	for key, v := range l.data {
		if strings.HasPrefix(key, "__") {
			continue
		}
		if strings.Contains(strings.ToLower(key), needle) {
			return v, true
		}
	}
	return nil, false
}

// formFields loads (and caches) the flattened field definitions of a form.
// A fetch failure degrades to an empty scan, it never aborts resolution.
func (r *Resolver) formFields(l *lookup) []FieldDef {
	if l.fieldsLoaded {
		return l.fields
	}
	l.fieldsLoaded = true

	if cached, ok := r.cache.Fields(l.formID); ok {
		l.fields = cached
		return l.fields
	}

	fields, err := r.source.FormFields(l.ctx, l.formID)
	if err != nil {
		r.log.Warn("failed to fetch form fields",
			zap.String("formId", l.formID),
			zap.Error(err))
		return nil
	}
	r.cache.SetFields(l.formID, fields)
	l.fields = fields
	return l.fields
}
