package submission

import (
	"context"
	"time"

	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
	ListByForm(ctx context.Context, formID string) ([]Submission, error)
}

type SubmissionRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSubmissionRepository(db *database.MongodbDB) SubmissionRepository {
	return &SubmissionRepositoryImpl{collection: db.DB.Collection("submissions")}
}

func (r *SubmissionRepositoryImpl) Create(ctx context.Context, sub *Submission) error {
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, sub)
	return err
}

func (r *SubmissionRepositoryImpl) GetByID(ctx context.Context, id string) (*Submission, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var sub Submission
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepositoryImpl) ListByForm(ctx context.Context, formID string) ([]Submission, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"form_id": formID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
