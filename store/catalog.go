package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stylenest/stylenest-backend/models"
)

// MongoProductFinder is the ProductFinder backed by the products collection.
type MongoProductFinder struct {
	Products *mongo.Collection
}

func NewMongoProductFinder(products *mongo.Collection) *MongoProductFinder {
	return &MongoProductFinder{Products: products}
}

// FindActiveByID fetches an active product by hex id. Missing, malformed and
// deactivated products all come back as models.ErrProductNotFound.
func (f *MongoProductFinder) FindActiveByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrProductNotFound
	}

	var product models.Product
	err = f.Products.FindOne(ctx, bson.M{"_id": oid, "isActive": true}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
