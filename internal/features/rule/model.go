package rule

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "notEquals"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "notContains"
	OperatorStartsWith  Operator = "startsWith"
	OperatorEndsWith    Operator = "endsWith"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorLessThan    Operator = "lessThan"
	OperatorIsEmpty     Operator = "isEmpty"
	OperatorIsNotEmpty  Operator = "isNotEmpty"
	OperatorExists      Operator = "exists"
	OperatorNotExists   Operator = "notExists"
)

// Condition is a single (field, operator, value) predicate. Field may be an
// identifier, a stable identifier or a human label; the resolver sorts it out.
type Condition struct {
	Field    string      `json:"field" bson:"field"`
	Operator Operator    `json:"operator" bson:"operator"`
	Value    interface{} `json:"value" bson:"value"`
}

type RecipientType string

const (
	RecipientStatic RecipientType = "static"
	RecipientField  RecipientType = "field"
)

// EmailRule pairs a condition list with a template and recipient
// configuration, scoped to one form. CC/BCC set here override the template's.
type EmailRule struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FormID         string             `json:"form_id" bson:"form_id"`
	Name           string             `json:"name" bson:"name"`
	Active         bool               `json:"active" bson:"active"`
	Conditions     []Condition        `json:"conditions" bson:"conditions"`
	TemplateID     primitive.ObjectID `json:"template_id" bson:"template_id"`
	RecipientType  RecipientType      `json:"recipient_type" bson:"recipient_type"`
	RecipientEmail string             `json:"recipient_email,omitempty" bson:"recipient_email,omitempty"`
	RecipientField string             `json:"recipient_field,omitempty" bson:"recipient_field,omitempty"`
	CcEmails       []string           `json:"cc_emails,omitempty" bson:"cc_emails,omitempty"`
	BccEmails      []string           `json:"bcc_emails,omitempty" bson:"bcc_emails,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}
