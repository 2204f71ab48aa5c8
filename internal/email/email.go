package email

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailStatus string

const (
	EmailQueued  EmailStatus = "queued"
	EmailSending EmailStatus = "sending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// Email is the delivery log record for one outbound message.
type Email struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From          string             `bson:"from" json:"from"`
	To            []string           `bson:"to" json:"to"`
	Cc            []string           `bson:"cc,omitempty" json:"cc,omitempty"`
	Bcc           []string           `bson:"bcc,omitempty" json:"bcc,omitempty"`
	Subject       string             `bson:"subject" json:"subject"`
	HtmlBody      string             `bson:"htmlBody,omitempty" json:"htmlBody,omitempty"`
	TextBody      string             `bson:"textBody,omitempty" json:"textBody,omitempty"`
	Status        EmailStatus        `bson:"status" json:"status"`
	RuleID        string             `bson:"ruleId,omitempty" json:"ruleId,omitempty"`
	SubmissionID  string             `bson:"submissionId,omitempty" json:"submissionId,omitempty"`
	CorrelationID string             `bson:"correlationId,omitempty" json:"correlationId,omitempty"`
	Attempts      int                `bson:"attempts" json:"attempts"`
	Transport     string             `bson:"transport,omitempty" json:"transport,omitempty"`
	ErrorMsg      string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	SentAt        *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
}

// SendState tracks a single send attempt through the transport.
type SendState int32

const (
	StateNotInitialized SendState = iota
	StateInitializing
	StateReady
	StateSending
	StateSucceeded
	StateFailed
)

func (s SendState) String() string {
	switch s {
	case StateNotInitialized:
		return "not_initialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SendResult is what the dispatcher hands back to the pipeline. Delivery is
// best-effort: a failed result never fails the submission that triggered it.
type SendResult struct {
	Success   bool   `json:"success"`
	Transport string `json:"transport,omitempty"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}
