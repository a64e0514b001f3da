package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a shipping/billing address embedded in users and orders.
type Address struct {
	FullName   string `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// User represents a registered user. The cart is embedded in the document;
// guests carry theirs on the session instead.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password,omitempty" json:"-"` // Password is not returned in JSON
	Role      string               `bson:"role" json:"role"`            // user, admin
	Provider  string               `bson:"provider,omitempty" json:"provider,omitempty"`
	Phone     string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   *Address             `bson:"address,omitempty" json:"address,omitempty"`
	Cart      []CartItem           `bson:"cart" json:"cart"`
	Wishlist  []primitive.ObjectID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	Orders    []primitive.ObjectID `bson:"orders,omitempty" json:"orders,omitempty"`
	Status    string               `bson:"status" json:"status"` // pending, verified, active
	OTP       string               `bson:"otp,omitempty" json:"-"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == "admin" }
