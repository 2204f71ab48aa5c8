package invoice

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

type Invoice struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	LeadID    string             `json:"lead_id" bson:"lead_id"`
	BookingID string             `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	Total     float64            `json:"total" bson:"total"`
	Currency  string             `json:"currency" bson:"currency"`
	Status    InvoiceStatus      `json:"status" bson:"status"`
	DueDate   *time.Time         `json:"due_date,omitempty" bson:"due_date,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
