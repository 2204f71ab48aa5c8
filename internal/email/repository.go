package email

import (
	"context"
	"time"

	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EmailRepository struct {
	collection *mongo.Collection
}

func NewEmailRepository(db *database.MongodbDB) *EmailRepository {
	return &EmailRepository{collection: db.DB.Collection("emails")}
}

func (r *EmailRepository) Create(ctx context.Context, email *Email) error {
	email.ID = primitive.NewObjectID()
	email.CreatedAt = time.Now()
	if email.Status == "" {
		email.Status = EmailQueued
	}
	_, err := r.collection.InsertOne(ctx, email)
	return err
}

// MarkSent records a successful delivery along with the transport that
// carried it and how many attempts it took.
func (r *EmailRepository) MarkSent(ctx context.Context, id primitive.ObjectID, transport string, attempts int) error {
	now := time.Now()
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    EmailSent,
		"transport": transport,
		"attempts":  attempts,
		"sentAt":    now,
	}})
	return err
}

func (r *EmailRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, errMsg string) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":       EmailFailed,
		"attempts":     attempts,
		"errorMessage": errMsg,
	}})
	return err
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	return err
}

// BySubmission lists delivery records for one submission, oldest first.
func (r *EmailRepository) BySubmission(ctx context.Context, submissionID string) ([]Email, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"submissionId": submissionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []Email
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}
