package booking

import (
	"context"
	"time"

	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, leadID string) ([]Booking, error)
	Update(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id string) error
	ConfirmedBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
}

type BookingRepositoryImpl struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *database.MongodbDB) BookingRepository {
	return &BookingRepositoryImpl{collection: db.DB.Collection("bookings")}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	if booking.Status == "" {
		booking.Status = BookingPending
	}
	_, err := r.collection.InsertOne(ctx, booking)
	return err
}

func (r *BookingRepositoryImpl) GetByID(ctx context.Context, id string) (*Booking, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var booking Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) List(ctx context.Context, leadID string) ([]Booking, error) {
	filter := bson.M{}
	if leadID != "" {
		filter["lead_id"] = leadID
	}

	opts := options.Find().SetSort(bson.M{"ceremony_date": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepositoryImpl) Update(ctx context.Context, booking *Booking) error {
	booking.UpdatedAt = time.Now()
	_, err := r.collection.UpdateByID(ctx, booking.ID, bson.M{"$set": booking})
	return err
}

func (r *BookingRepositoryImpl) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

// ConfirmedBetween lists confirmed ceremonies in the window that have not yet
// received a reminder.
func (r *BookingRepositoryImpl) ConfirmedBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":        BookingConfirmed,
		"reminder_sent": false,
		"ceremony_date": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepositoryImpl) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"reminder_sent": true,
		"updated_at":    time.Now(),
	}})
	return err
}
