package template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmailTemplate holds subject/body strings with {{token}} placeholders.
// EnrichScript is an optional script run before rendering; it may derive
// extra variables from the submission (e.g. splitting a full name into
// firstName/lastName).
type EmailTemplate struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Subject      string             `json:"subject" bson:"subject"`
	Body         string             `json:"body" bson:"body"`
	TextBody     string             `json:"text_body,omitempty" bson:"text_body,omitempty"`
	CcEmails     []string           `json:"cc_emails,omitempty" bson:"cc_emails,omitempty"`
	BccEmails    []string           `json:"bcc_emails,omitempty" bson:"bcc_emails,omitempty"`
	EnrichScript string             `json:"enrich_script,omitempty" bson:"enrich_script,omitempty"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	IsActive     bool               `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
