package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylenest/stylenest-backend/models"
)

// fakeStock tracks per-variant stock and soldCount in memory with the same
// conditional semantics the Mongo reserver enforces.
type fakeStock struct {
	stock       map[string]int
	sold        map[string]int
	failRelease map[string]error
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		stock:       make(map[string]int),
		sold:        make(map[string]int),
		failRelease: make(map[string]error),
	}
}

func stockKey(l StockLine) string {
	return fmt.Sprintf("%s/%s/%s", l.ProductID.Hex(), l.Size, l.Color)
}

func (f *fakeStock) set(l StockLine, available int) {
	f.stock[stockKey(l)] = available
}

func (f *fakeStock) Reserve(ctx context.Context, l StockLine) error {
	k := stockKey(l)
	if f.stock[k] < l.Quantity {
		return models.ErrInsufficientStock
	}
	f.stock[k] -= l.Quantity
	f.sold[k] += l.Quantity
	return nil
}

func (f *fakeStock) Release(ctx context.Context, l StockLine) error {
	k := stockKey(l)
	if err := f.failRelease[k]; err != nil {
		return err
	}
	f.stock[k] += l.Quantity
	f.sold[k] -= l.Quantity
	return nil
}

func stockLine(qty int) StockLine {
	return StockLine{ProductID: primitive.NewObjectID(), Size: "M", Color: "Black", Quantity: qty}
}

func TestReserveAllTakesExactQuantities(t *testing.T) {
	fake := newFakeStock()
	a, b := stockLine(2), stockLine(3)
	fake.set(a, 5)
	fake.set(b, 3)

	i, err := ReserveAll(context.Background(), fake, []StockLine{a, b}, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, i)

	assert.Equal(t, 3, fake.stock[stockKey(a)])
	assert.Equal(t, 2, fake.sold[stockKey(a)])
	assert.Equal(t, 0, fake.stock[stockKey(b)])
	assert.Equal(t, 3, fake.sold[stockKey(b)])
}

func TestReserveAllRollsBackOnMidSequenceFailure(t *testing.T) {
	fake := newFakeStock()
	a, scarce, c := stockLine(2), stockLine(4), stockLine(1)
	fake.set(a, 10)
	fake.set(scarce, 3) // one short
	fake.set(c, 10)

	i, err := ReserveAll(context.Background(), fake, []StockLine{a, scarce, c}, nil)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 1, i, "the failing line is identified")

	// all-or-nothing: the first line's reservation was released, the third
	// was never attempted, and nothing counts as sold
	assert.Equal(t, 10, fake.stock[stockKey(a)])
	assert.Equal(t, 3, fake.stock[stockKey(scarce)])
	assert.Equal(t, 10, fake.stock[stockKey(c)])
	for k, sold := range fake.sold {
		assert.Zero(t, sold, "soldCount leaked on %s", k)
	}
}

func TestReserveAllReportsReleaseFailures(t *testing.T) {
	fake := newFakeStock()
	stuck, scarce := stockLine(2), stockLine(1)
	fake.set(stuck, 5)
	fake.set(scarce, 0)
	fake.failRelease[stockKey(stuck)] = errors.New("write concern timeout")

	var reported []StockLine
	onFail := func(l StockLine, err error) {
		require.Error(t, err)
		reported = append(reported, l)
	}

	_, err := ReserveAll(context.Background(), fake, []StockLine{stuck, scarce}, onFail)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	require.Len(t, reported, 1)
	assert.Equal(t, stockKey(stuck), stockKey(reported[0]))
}

func TestReleaseAllRestoresEveryLine(t *testing.T) {
	fake := newFakeStock()
	a, b := stockLine(2), stockLine(3)
	fake.set(a, 5)
	fake.set(b, 5)

	i, err := ReserveAll(context.Background(), fake, []StockLine{a, b}, nil)
	require.NoError(t, err)
	require.Equal(t, -1, i)

	ReleaseAll(fake, []StockLine{a, b}, nil)

	assert.Equal(t, 5, fake.stock[stockKey(a)])
	assert.Equal(t, 5, fake.stock[stockKey(b)])
	assert.Zero(t, fake.sold[stockKey(a)])
	assert.Zero(t, fake.sold[stockKey(b)])
}
