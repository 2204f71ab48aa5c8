package form

import (
	"context"
	"time"

	"vowops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FormRepository interface {
	Create(ctx context.Context, form *Form) error
	GetByID(ctx context.Context, id string) (*Form, error)
	List(ctx context.Context) ([]Form, error)
	Update(ctx context.Context, form *Form) error
	Delete(ctx context.Context, id string) error
}

type FormRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewFormRepository(mongodb *database.MongodbDB) FormRepository {
	return &FormRepositoryImpl{
		Collection: mongodb.DB.Collection("forms"),
	}
}

func (r *FormRepositoryImpl) Create(ctx context.Context, form *Form) error {
	form.ID = primitive.NewObjectID()
	form.CreatedAt = time.Now()
	form.UpdatedAt = time.Now()
	_, err := r.Collection.InsertOne(ctx, form)
	return err
}

func (r *FormRepositoryImpl) GetByID(ctx context.Context, id string) (*Form, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var form Form
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&form)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

func (r *FormRepositoryImpl) List(ctx context.Context) ([]Form, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var forms []Form
	if err = cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *FormRepositoryImpl) Update(ctx context.Context, form *Form) error {
	form.UpdatedAt = time.Now()
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": form.ID}, bson.M{"$set": form})
	return err
}

func (r *FormRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
