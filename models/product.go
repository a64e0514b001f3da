package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variant is one purchasable (size, color) combination of a product.
// Price, when non-nil, overrides the product's base price for this variant.
type Variant struct {
	Size      string   `bson:"size" json:"size"`
	Color     string   `bson:"color" json:"color"`
	ColorCode string   `bson:"colorCode,omitempty" json:"colorCode,omitempty"`
	Stock     int      `bson:"stock" json:"stock"`
	Price     *float64 `bson:"price,omitempty" json:"price,omitempty"`
}

// Product is a catalog entry. TotalStock is denormalized from the variants
// and must be recomputed before every save.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Slug         string             `bson:"slug" json:"slug"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	ComparePrice float64            `bson:"comparePrice,omitempty" json:"comparePrice,omitempty"`
	SKU          string             `bson:"sku" json:"sku"`
	Category     primitive.ObjectID `bson:"category" json:"category"`
	Brand        string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Fabric       string             `bson:"fabric,omitempty" json:"fabric,omitempty"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Images       []string           `bson:"images" json:"images"`
	Variants     []Variant          `bson:"variants" json:"variants"`
	TotalStock   int                `bson:"totalStock" json:"totalStock"`
	Rating       float64            `bson:"rating" json:"rating"`
	ViewCount    int64              `bson:"viewCount" json:"viewCount"`
	SoldCount    int64              `bson:"soldCount" json:"soldCount"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecomputeTotalStock resets TotalStock to the sum of the variants' stock.
// Call it before persisting any change that touches variants.
func (p *Product) RecomputeTotalStock() {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	p.TotalStock = total
}

// FindVariant returns the variant matching (size, color), color compared
// case-insensitively. The second return is false when no variant matches.
func (p *Product) FindVariant(size, color string) (*Variant, bool) {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.Size == size && strings.EqualFold(v.Color, color) {
			return v, true
		}
	}
	return nil, false
}

// UnitPrice returns the effective price of a variant: the variant override
// when present, the product base price otherwise.
func (p *Product) UnitPrice(v *Variant) float64 {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return p.Price
}

// garment sizes in display order; anything not listed sorts after, A-Z
var sizeOrder = map[string]int{
	"XXS": 0, "XS": 1, "S": 2, "M": 3, "L": 4,
	"XL": 5, "XXL": 6, "XXXL": 7, "4XL": 8, "5XL": 9,
}

// SortSizes orders garment sizes XXS..5XL with unknown sizes sorted
// lexicographically after the known ones. Sorts in place and returns the slice.
func SortSizes(sizes []string) []string {
	sort.SliceStable(sizes, func(i, j int) bool {
		oi, iok := sizeOrder[strings.ToUpper(sizes[i])]
		oj, jok := sizeOrder[strings.ToUpper(sizes[j])]
		switch {
		case iok && jok:
			return oi < oj
		case iok:
			return true
		case jok:
			return false
		default:
			return sizes[i] < sizes[j]
		}
	})
	return sizes
}
