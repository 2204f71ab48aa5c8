package models

// Submission payloads are keyed by opaque field identifiers. At submission time
// two side-structures are computed and stored alongside the raw answers so later
// lookups do not need the form definition: __mappedFields links semantic keys to
// their underlying field, __sectionInfo records section membership.
const (
	MappedFieldsKey = "__mappedFields"
	SectionInfoKey  = "__sectionInfo"
)

// MappedField is one entry of the __mappedFields side-structure.
type MappedField struct {
	FieldID    string      `bson:"fieldId" json:"fieldId"`
	Value      interface{} `bson:"value" json:"value"`
	Label      string      `bson:"label,omitempty" json:"label,omitempty"`
	StableID   string      `bson:"stableId,omitempty" json:"stableId,omitempty"`
	DisplayKey string      `bson:"displayKey" json:"displayKey"`
}

// SectionInfo is one entry of the __sectionInfo side-structure.
type SectionInfo struct {
	SectionID string   `bson:"sectionId" json:"sectionId"`
	Title     string   `bson:"title,omitempty" json:"title,omitempty"`
	FieldIDs  []string `bson:"fieldIds" json:"fieldIds"`
}

// AsMappedField tolerates both the typed struct (in-process pipeline) and the
// generic map shape a Mongo round-trip produces.
func AsMappedField(v interface{}) (MappedField, bool) {
	switch m := v.(type) {
	case MappedField:
		return m, true
	case *MappedField:
		return *m, true
	case map[string]interface{}:
		mf := MappedField{Value: m["value"]}
		if s, ok := m["fieldId"].(string); ok {
			mf.FieldID = s
		}
		if s, ok := m["label"].(string); ok {
			mf.Label = s
		}
		if s, ok := m["stableId"].(string); ok {
			mf.StableID = s
		}
		if s, ok := m["displayKey"].(string); ok {
			mf.DisplayKey = s
		}
		return mf, true
	}
	return MappedField{}, false
}

// MappedFieldsOf extracts the __mappedFields side-structure from a raw payload.
func MappedFieldsOf(data map[string]interface{}) map[string]MappedField {
	raw, ok := data[MappedFieldsKey]
	if !ok {
		return nil
	}

	out := make(map[string]MappedField)
	switch typed := raw.(type) {
	case map[string]MappedField:
		return typed
	case map[string]interface{}:
		for k, v := range typed {
			if mf, ok := AsMappedField(v); ok {
				out[k] = mf
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
