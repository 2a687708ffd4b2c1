package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusShipped, OrderStatusCancelled, OrderStatusDelivered:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled
// by its owner. Shipped, delivered and already-cancelled orders may not.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPlaced
}

// Address is a delivery snapshot copied into the order at placement time; it
// does not track later edits to the user's saved addresses.
type Address struct {
	ReceiverName   string `bson:"receiverName" json:"receiverName"`
	ReceiverMobile string `bson:"receiverMobile" json:"receiverMobile"`
	AddressLine1   string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2   string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City           string `bson:"city" json:"city"`
	Pincode        string `bson:"pincode" json:"pincode"`
	Label          string `bson:"label" json:"label"`
}

// OrderLine references a product/variant weakly: the ids are for lookup and
// display only, so order history survives product deletion. Price is the unit
// price resolved at order time and never changes afterwards.
type OrderLine struct {
	ProductId bson.ObjectID `bson:"productId" json:"productId"`
	VariantId bson.ObjectID `bson:"variantId" json:"variantId"`
	Quantity  int           `bson:"quantity" json:"quantity"`
	Price     float64       `bson:"price" json:"price"`
}

type Order struct {
	Id          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserId      bson.ObjectID `bson:"userId" json:"userId"`
	Products    []OrderLine   `bson:"products" json:"products"`
	TotalAmount float64       `bson:"totalAmount" json:"totalAmount"`
	Address     Address       `bson:"address" json:"address"`
	Status      OrderStatus   `bson:"status" json:"status"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
