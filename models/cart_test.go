package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMergeLineSumsQuantities(t *testing.T) {
	pid := primitive.NewObjectID()
	items := []CartItem{{ProductID: pid, Size: "M", Color: "Black", Quantity: 2}}

	items = MergeLine(items, CartItem{ProductID: pid, Size: "M", Color: "Black", Quantity: 3})

	assert.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestMergeLineColorCaseInsensitive(t *testing.T) {
	pid := primitive.NewObjectID()
	items := []CartItem{{ProductID: pid, Size: "M", Color: "Black", Quantity: 1}}

	items = MergeLine(items, CartItem{ProductID: pid, Size: "M", Color: "BLACK", Quantity: 1})

	assert.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestMergeLineAppendsDistinctVariants(t *testing.T) {
	pid := primitive.NewObjectID()
	items := []CartItem{{ProductID: pid, Size: "M", Color: "Black", Quantity: 1}}

	items = MergeLine(items, CartItem{ProductID: pid, Size: "L", Color: "Black", Quantity: 1})
	items = MergeLine(items, CartItem{ProductID: pid, Size: "M", Color: "White", Quantity: 1})
	items = MergeLine(items, CartItem{ProductID: primitive.NewObjectID(), Size: "M", Color: "Black", Quantity: 1})

	assert.Len(t, items, 4)
}

func TestRemoveLine(t *testing.T) {
	pid := primitive.NewObjectID()
	other := primitive.NewObjectID()
	items := []CartItem{
		{ProductID: pid, Size: "M", Color: "Black", Quantity: 2},
		{ProductID: other, Size: "S", Color: "Red", Quantity: 1},
	}

	items = RemoveLine(items, pid, "M", "Black")
	assert.Len(t, items, 1)
	assert.Equal(t, other, items[0].ProductID)

	// removing a line that is not there is a no-op
	items = RemoveLine(items, pid, "M", "Black")
	assert.Len(t, items, 1)
}

func TestFindLine(t *testing.T) {
	pid := primitive.NewObjectID()
	items := []CartItem{
		{ProductID: pid, Size: "M", Color: "Black", Quantity: 2},
		{ProductID: pid, Size: "L", Color: "Black", Quantity: 1},
	}

	assert.Equal(t, 1, FindLine(items, pid, "L", "Black"))
	assert.Equal(t, -1, FindLine(items, pid, "XL", "Black"))
	assert.Equal(t, -1, FindLine(nil, pid, "M", "Black"))
}
