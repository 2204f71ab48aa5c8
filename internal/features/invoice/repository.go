package invoice

import (
	"context"
	"time"

	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, leadID string) ([]Invoice, error)
	UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error
}

type InvoiceRepositoryImpl struct {
	collection *mongo.Collection
}

func NewInvoiceRepository(db *database.MongodbDB) InvoiceRepository {
	return &InvoiceRepositoryImpl{collection: db.DB.Collection("invoices")}
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, invoice *Invoice) error {
	invoice.ID = primitive.NewObjectID()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt
	if invoice.Status == "" {
		invoice.Status = InvoiceDraft
	}
	if invoice.Currency == "" {
		invoice.Currency = "USD"
	}
	_, err := r.collection.InsertOne(ctx, invoice)
	return err
}

func (r *InvoiceRepositoryImpl) GetByID(ctx context.Context, id string) (*Invoice, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var invoice Invoice
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepositoryImpl) List(ctx context.Context, leadID string) ([]Invoice, error) {
	filter := bson.M{}
	if leadID != "" {
		filter["lead_id"] = leadID
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceRepositoryImpl) UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error {
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
