package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeTotalStock(t *testing.T) {
	p := Product{
		Variants: []Variant{
			{Size: "S", Color: "Black", Stock: 5},
			{Size: "M", Color: "Black", Stock: 12},
			{Size: "L", Color: "White", Stock: 0},
		},
		TotalStock: 999, // stale, never trusted
	}
	p.RecomputeTotalStock()
	assert.Equal(t, 17, p.TotalStock)

	p.Variants = nil
	p.RecomputeTotalStock()
	assert.Equal(t, 0, p.TotalStock)
}

func TestFindVariant(t *testing.T) {
	p := Product{
		Variants: []Variant{
			{Size: "M", Color: "Black", Stock: 3},
			{Size: "M", Color: "Navy Blue", Stock: 1},
		},
	}

	v, ok := p.FindVariant("M", "black") // color is case-insensitive
	assert.True(t, ok)
	assert.Equal(t, 3, v.Stock)

	_, ok = p.FindVariant("m", "Black") // size is exact
	assert.False(t, ok)

	_, ok = p.FindVariant("XL", "Black")
	assert.False(t, ok)
}

func TestUnitPrice(t *testing.T) {
	override := 24.99
	p := Product{
		Price: 29.99,
		Variants: []Variant{
			{Size: "M", Color: "Black", Stock: 3, Price: &override},
			{Size: "L", Color: "Black", Stock: 3},
		},
	}

	m, _ := p.FindVariant("M", "Black")
	assert.Equal(t, 24.99, p.UnitPrice(m))

	l, _ := p.FindVariant("L", "Black")
	assert.Equal(t, 29.99, p.UnitPrice(l))
}

func TestSortSizes(t *testing.T) {
	got := SortSizes([]string{"XL", "Free Size", "S", "28", "M", "XS", "32"})
	assert.Equal(t, []string{"XS", "S", "M", "XL", "28", "32", "Free Size"}, got)
}

func TestSortSizesCaseInsensitive(t *testing.T) {
	got := SortSizes([]string{"xl", "s"})
	assert.Equal(t, []string{"s", "xl"}, got)
}
