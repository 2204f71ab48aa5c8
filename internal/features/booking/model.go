package booking

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a scheduled ceremony for a lead.
type Booking struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	LeadID       string             `json:"lead_id" bson:"lead_id"`
	CeremonyDate time.Time          `json:"ceremony_date" bson:"ceremony_date"`
	Location     string             `json:"location,omitempty" bson:"location,omitempty"`
	Officiant    string             `json:"officiant,omitempty" bson:"officiant,omitempty"`
	Notes        string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Status       BookingStatus      `json:"status" bson:"status"`
	ReminderSent bool               `json:"reminder_sent" bson:"reminder_sent"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
