package lead

import (
	"context"
	"errors"
	"time"

	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	FindByEmail(ctx context.Context, formID, email string) (*Lead, error)
	List(ctx context.Context, formID string) ([]Lead, error)
	Update(ctx context.Context, lead *Lead) error
	UpdateStatus(ctx context.Context, id string, status LeadStatus) error
}

type LeadRepositoryImpl struct {
	collection *mongo.Collection
}

func NewLeadRepository(db *database.MongodbDB) LeadRepository {
	return &LeadRepositoryImpl{collection: db.DB.Collection("leads")}
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *Lead) error {
	lead.ID = primitive.NewObjectID()
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	if lead.Status == "" {
		lead.Status = LeadNew
	}
	_, err := r.collection.InsertOne(ctx, lead)
	return err
}

func (r *LeadRepositoryImpl) GetByID(ctx context.Context, id string) (*Lead, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var lead Lead
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByEmail returns nil, nil when no lead matches.
func (r *LeadRepositoryImpl) FindByEmail(ctx context.Context, formID, email string) (*Lead, error) {
	var lead Lead
	err := r.collection.FindOne(ctx, bson.M{"form_id": formID, "email": email}).Decode(&lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepositoryImpl) List(ctx context.Context, formID string) ([]Lead, error) {
	filter := bson.M{}
	if formID != "" {
		filter["form_id"] = formID
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *LeadRepositoryImpl) Update(ctx context.Context, lead *Lead) error {
	lead.UpdatedAt = time.Now()
	_, err := r.collection.UpdateByID(ctx, lead.ID, bson.M{"$set": lead})
	return err
}

func (r *LeadRepositoryImpl) UpdateStatus(ctx context.Context, id string, status LeadStatus) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateByID(ctx, objID, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	return err
}
