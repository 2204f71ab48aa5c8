package lead

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadBooked    LeadStatus = "booked"
	LeadClosed    LeadStatus = "closed"
)

// Lead is the contact a submission traces back to. Leads are deduplicated by
// email within a form, so repeat inquiries land on the same record.
type Lead struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FormID      string             `json:"form_id" bson:"form_id"`
	Name        string             `json:"name,omitempty" bson:"name,omitempty"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Status      LeadStatus         `json:"status" bson:"status"`
	Submissions int                `json:"submissions" bson:"submissions"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
