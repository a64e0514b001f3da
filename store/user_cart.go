package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stylenest/stylenest-backend/models"
)

// UserCartStore reads and writes the cart array embedded in the user
// document. The key is the user's hex ObjectID.
type UserCartStore struct {
	Users *mongo.Collection
}

func NewUserCartStore(users *mongo.Collection) *UserCartStore {
	return &UserCartStore{Users: users}
}

func (u *UserCartStore) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	var doc struct {
		Cart []models.CartItem `bson:"cart"`
	}
	err = u.Users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return doc.Cart, nil
}

func (u *UserCartStore) Save(ctx context.Context, userID string, items []models.CartItem) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.ErrUnauthorized
	}
	if items == nil {
		items = []models.CartItem{}
	}
	res, err := u.Users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"cart": items}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrUnauthorized
	}
	return nil
}

func (u *UserCartStore) Clear(ctx context.Context, userID string) error {
	return u.Save(ctx, userID, nil)
}
