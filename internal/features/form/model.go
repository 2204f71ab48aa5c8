package form

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldMapping tags what a field semantically holds, independent of its
// generated identifier.
type FieldMapping string

const (
	MappingEmail  FieldMapping = "email"
	MappingPhone  FieldMapping = "phone"
	MappingName   FieldMapping = "name"
	MappingCustom FieldMapping = "custom"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeDate     FieldType = "date"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
)

// Field identifiers are unique within a form. StableID is a caller-chosen
// symbolic name meant to survive form re-creation; it should be unique within
// a form but the resolver tolerates duplicates or absence.
type Field struct {
	ID        string       `json:"id" bson:"id"`
	Label     string       `json:"label,omitempty" bson:"label,omitempty"`
	StableID  string       `json:"stable_id,omitempty" bson:"stable_id,omitempty"`
	Mapping   FieldMapping `json:"mapping,omitempty" bson:"mapping,omitempty"`
	CustomKey string       `json:"custom_key,omitempty" bson:"custom_key,omitempty"`
	Type      FieldType    `json:"type" bson:"type"`
	Required  bool         `json:"required" bson:"required"`
	Options   []string     `json:"options,omitempty" bson:"options,omitempty"`
}

type Section struct {
	ID     string  `json:"id" bson:"id"`
	Title  string  `json:"title" bson:"title"`
	Order  int     `json:"order" bson:"order"`
	Fields []Field `json:"fields" bson:"fields"`
}

type Form struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Sections    []Section          `json:"sections" bson:"sections"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// AllFields flattens the section tree in authoring order.
func (f *Form) AllFields() []Field {
	var out []Field
	for _, s := range f.Sections {
		out = append(out, s.Fields...)
	}
	return out
}
