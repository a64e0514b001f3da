package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. An order moves pending → confirmed → processing → shipped
// → delivered; cancelled, returned and refunded are side exits available from
// any non-terminal state. delivered, cancelled, returned and refunded are
// terminal: no transition leaves them.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusReturned   = "returned"
	StatusRefunded   = "refunded"
)

var orderStatuses = map[string]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
	StatusReturned:   true,
	StatusRefunded:   true,
}

var terminalStatuses = map[string]bool{
	StatusDelivered: true,
	StatusCancelled: true,
	StatusReturned:  true,
	StatusRefunded:  true,
}

// IsValidStatus reports whether s is one of the fixed order statuses.
func IsValidStatus(s string) bool { return orderStatuses[s] }

// IsTerminalStatus reports whether s allows no further transitions.
func IsTerminalStatus(s string) bool { return terminalStatuses[s] }

// OrderItem is a point-in-time copy of a purchased line. It is deliberately
// decoupled from the live Product so later catalog edits never alter
// historical orders.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color" json:"color"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Total     float64            `bson:"total" json:"total"`
}

// Pricing is the order-level money snapshot computed once at commit time.
type Pricing struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Tax      float64 `bson:"tax" json:"tax"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Discount float64 `bson:"discount" json:"discount"`
	Total    float64 `bson:"total" json:"total"`
}

// StatusEntry is one immutable audit record in an order's history.
type StatusEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

// ShippingInfo holds the delivery address plus carrier details filled in by
// admins as the order ships.
type ShippingInfo struct {
	Address           Address    `bson:"address" json:"address"`
	TrackingNumber    string     `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	Carrier           string     `bson:"carrier,omitempty" json:"carrier,omitempty"`
	EstimatedDelivery *time.Time `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
}

// PaymentInfo is a placeholder for gateway integration; only the status
// field is mutable after order creation.
type PaymentInfo struct {
	Method string `bson:"method" json:"method"`
	Status string `bson:"status" json:"status"`
}

// Order is immutable after creation except for status, statusHistory,
// shipping carrier fields and payment status. Orders are never deleted.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"orderNumber" json:"orderNumber"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Pricing       Pricing            `bson:"pricing" json:"pricing"`
	Status        string             `bson:"status" json:"status"`
	StatusHistory []StatusEntry      `bson:"statusHistory" json:"statusHistory"`
	Shipping      ShippingInfo       `bson:"shipping" json:"shipping"`
	PaymentInfo   PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	CouponCode    string             `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanTransitionTo reports whether the order may move to the target status.
// Unknown targets and any move out of a terminal status are rejected;
// the no-op transition to the current status is also rejected.
func (o *Order) CanTransitionTo(target string) bool {
	if !IsValidStatus(target) {
		return false
	}
	if IsTerminalStatus(o.Status) {
		return false
	}
	return target != o.Status
}

// Transition advances the order to target, appending an audit entry. The
// current Status always equals the last history entry's status afterwards.
// Returns ErrInvalidStatus and leaves the order unchanged when the move is
// not allowed.
func (o *Order) Transition(target, note string) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatus
	}
	now := time.Now()
	o.Status = target
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    target,
		Timestamp: now,
		Note:      note,
	})
	o.UpdatedAt = now
	return nil
}
