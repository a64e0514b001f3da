package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products. Categories are never hard-deleted while active
// products or active subcategories still reference them; they are
// soft-deactivated instead (IsActive=false).
type Category struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Slug           string               `bson:"slug" json:"slug"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	Image          string               `bson:"image,omitempty" json:"image,omitempty"`
	ParentCategory *primitive.ObjectID  `bson:"parentCategory,omitempty" json:"parentCategory,omitempty"`
	SubCategories  []primitive.ObjectID `bson:"subCategories,omitempty" json:"subCategories,omitempty"`
	IsActive       bool                 `bson:"isActive" json:"isActive"`
	SortOrder      int                  `bson:"sortOrder" json:"sortOrder"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}
