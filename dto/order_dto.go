package dto

type OrderLineDTO struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// AddressDTO mirrors the delivery snapshot stored on the order. Line 2 is the
// only optional field.
type AddressDTO struct {
	ReceiverName   string `json:"receiverName" binding:"required"`
	ReceiverMobile string `json:"receiverMobile" binding:"required"`
	AddressLine1   string `json:"addressLine1" binding:"required"`
	AddressLine2   string `json:"addressLine2"`
	City           string `json:"city" binding:"required"`
	Pincode        string `json:"pincode" binding:"required"`
	Label          string `json:"label" binding:"required"`
}

type PlaceOrderDTO struct {
	Products []OrderLineDTO `json:"products" binding:"required,min=1,dive"`
	Address  AddressDTO     `json:"address" binding:"required"`
}

type CancelOrderDTO struct {
	OrderID string `json:"orderId" binding:"required"`
}

type OrderDetailsDTO struct {
	OrderID string `json:"orderId" binding:"required"`
}

type UpdateOrderStatusDTO struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}
