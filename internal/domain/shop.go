package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Product is an item sold in the shop.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"` // e.g. "Accessory", "Nutrition", "Apparel"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	StockQty    int                `bson:"stockQty" json:"stockQty"`
	ImageKey    string             `bson:"imageKey,omitempty" json:"-"` // Object-storage key; exposed via presigned URL only
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartItem is one product line in a user's cart. One document per
// (user, product) pair; adding the same product again bumps Quantity.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

// OrderItem snapshots a product line at checkout time. Name and UnitPrice are
// copied so later product edits do not rewrite order history.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unitPrice" json:"unitPrice"`
}

// Payment records the (simulated) card charge for an order.
type Payment struct {
	Reference string    `bson:"reference" json:"reference"` // Unique, uuid
	Amount    float64   `bson:"amount" json:"amount"`
	Status    string    `bson:"status" json:"status"`
	Method    string    `bson:"method" json:"method"` // "card"
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Order is a completed checkout: snapshot of the cart plus payment outcome.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Address   string             `bson:"address" json:"address"`
	Total     float64            `bson:"total" json:"total"`
	Status    string             `bson:"status" json:"status"`
	Items     []OrderItem        `bson:"items" json:"items"`
	Payment   Payment            `bson:"payment" json:"payment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
