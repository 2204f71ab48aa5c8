package submission

import (
	"fmt"
	"strings"
	"time"

	"vowops/internal/common/models"
	"vowops/internal/features/form"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission is an immutable record of one form fill. Data holds the raw
// answers keyed by field identifier plus the computed side-structures.
type Submission struct {
	ID            primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	FormID        string                 `json:"form_id" bson:"form_id"`
	LeadID        string                 `json:"lead_id,omitempty" bson:"lead_id,omitempty"`
	TrackingToken string                 `json:"tracking_token" bson:"tracking_token"`
	Data          map[string]interface{} `json:"data" bson:"data"`
	CreatedAt     time.Time              `json:"created_at" bson:"created_at"`
}

// attachSideStructures computes __mappedFields and __sectionInfo from the form
// definition and stores them in the payload. Doing this once at submission
// time means later lookups never need the (possibly since-edited) form.
func attachSideStructures(f *form.Form, data map[string]interface{}) {
	mapped := make(map[string]models.MappedField)
	sections := make([]models.SectionInfo, 0, len(f.Sections))

	for _, section := range f.Sections {
		info := models.SectionInfo{SectionID: section.ID, Title: section.Title}
		for _, field := range section.Fields {
			info.FieldIDs = append(info.FieldIDs, field.ID)

			value, ok := data[field.ID]
			if !ok {
				continue
			}

			key := displayKey(field)
			if key == "" {
				continue
			}
			if _, taken := mapped[key]; taken {
				continue
			}
			mapped[key] = models.MappedField{
				FieldID:    field.ID,
				Value:      value,
				Label:      field.Label,
				StableID:   field.StableID,
				DisplayKey: key,
			}
		}
		sections = append(sections, info)
	}

	if len(mapped) > 0 {
		data[models.MappedFieldsKey] = mapped
	}
	data[models.SectionInfoKey] = sections
}

// displayKey picks the semantic key a field is published under: explicit
// mapping first, then stable id, then a camelCased label.
func displayKey(f form.Field) string {
	switch f.Mapping {
	case form.MappingEmail, form.MappingPhone, form.MappingName:
		return string(f.Mapping)
	case form.MappingCustom:
		if f.CustomKey != "" {
			return f.CustomKey
		}
	}
	if f.StableID != "" {
		return f.StableID
	}
	if f.Label != "" {
		return labelKey(f.Label)
	}
	return ""
}

func labelKey(label string) string {
	words := strings.Fields(strings.ToLower(label))
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

// newTrackingToken stamps a lead id with submission time, recoverable by
// trimming everything after the last dash.
func newTrackingToken(leadID string, at time.Time) string {
	return fmt.Sprintf("%s-%d", leadID, at.UnixMilli())
}
