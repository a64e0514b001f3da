package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stylenest/stylenest-backend/models"
)

// StockLine identifies one variant quantity taken at checkout.
type StockLine struct {
	ProductID primitive.ObjectID
	Size      string
	Color     string
	Quantity  int
}

// StockReserver applies and reverses stock decrements for single lines.
// Reserve must be conditional on available stock; Release is unconditional.
type StockReserver interface {
	Reserve(ctx context.Context, line StockLine) error
	Release(ctx context.Context, line StockLine) error
}

// ReserveAll takes stock for every line or for none. The first failing
// reserve releases the lines already taken and aborts; its index and error
// are returned so the caller can name the offending line. A fully reserved
// set returns (-1, nil).
func ReserveAll(ctx context.Context, stock StockReserver, lines []StockLine, onReleaseFail func(StockLine, error)) (int, error) {
	applied := make([]StockLine, 0, len(lines))
	for i, l := range lines {
		if err := stock.Reserve(ctx, l); err != nil {
			ReleaseAll(stock, applied, onReleaseFail)
			return i, err
		}
		applied = append(applied, l)
	}
	return -1, nil
}

// ReleaseAll reverses reservations. It runs on a fresh context: the
// request's may already be done, and the release must still happen. Lines
// that fail to release are reported through onFail for manual
// reconciliation instead of overselling silently.
func ReleaseAll(stock StockReserver, lines []StockLine, onFail func(StockLine, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, l := range lines {
		if err := stock.Release(ctx, l); err != nil && onFail != nil {
			onFail(l, err)
		}
	}
}

// MongoStockReserver adjusts variant stock on the product documents.
type MongoStockReserver struct {
	Products *mongo.Collection
}

func NewMongoStockReserver(products *mongo.Collection) *MongoStockReserver {
	return &MongoStockReserver{Products: products}
}

// Reserve takes line.Quantity units in one conditional update: the filter
// only matches while the variant still has that much stock, so concurrent
// checkouts cannot oversell.
func (s *MongoStockReserver) Reserve(ctx context.Context, line StockLine) error {
	filter := bson.M{
		"_id": line.ProductID,
		"variants": bson.M{"$elemMatch": bson.M{
			"size":  line.Size,
			"color": line.Color,
			"stock": bson.M{"$gte": line.Quantity},
		}},
	}
	update := bson.M{"$inc": bson.M{
		"variants.$.stock": -line.Quantity,
		"totalStock":       -line.Quantity,
		"soldCount":        line.Quantity,
	}}
	res, err := s.Products.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return models.ErrInsufficientStock
	}
	return nil
}

// Release reverses a reservation (failed checkout, cancellation, return).
func (s *MongoStockReserver) Release(ctx context.Context, line StockLine) error {
	filter := bson.M{
		"_id":      line.ProductID,
		"variants": bson.M{"$elemMatch": bson.M{"size": line.Size, "color": line.Color}},
	}
	update := bson.M{"$inc": bson.M{
		"variants.$.stock": line.Quantity,
		"totalStock":       line.Quantity,
		"soldCount":        -line.Quantity,
	}}
	_, err := s.Products.UpdateOne(ctx, filter, update)
	return err
}
