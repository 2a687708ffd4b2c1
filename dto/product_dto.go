package dto

import "time"

type PriceTierDTO struct {
	MinQuantity int     `json:"minQuantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
}

type MeasurementDTO struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Label string  `json:"label"`
}

type VariantDTO struct {
	PackOf        int             `json:"packOf"`
	Measurement   *MeasurementDTO `json:"measurement"`
	Expiry        *time.Time      `json:"expiry"`
	MRP           float64         `json:"mrp"`
	Stock         int             `json:"stock"`
	IsActive      *bool           `json:"isActive"`
	SellingPrices []PriceTierDTO  `json:"sellingPrices"`
}

type DeliveryOptionDTO struct {
	IsCancel     bool `json:"isCancel"`
	IsReturnable bool `json:"isReturnable"`
	IsWarranty   bool `json:"isWarranty"`
}

// CreateProductDTO is parsed from the "data" multipart field (JSON); image
// files travel in the same form under "thumbnail" and "variantImages_<idx>".
type CreateProductDTO struct {
	Name           string             `json:"name"`
	Slug           string             `json:"slug"`
	Brand          string             `json:"brand"`
	CategoryID     string             `json:"categoryId"`
	Tags           []string           `json:"tags"`
	Description    string             `json:"description"`
	DeliveryOption *DeliveryOptionDTO `json:"deliveryOption"`
	Variants       []VariantDTO       `json:"variants"`
	IsActive       *bool              `json:"isActive"`
}

type UpdateProductDTO struct {
	Name           *string            `json:"name,omitempty"`
	Slug           *string            `json:"slug,omitempty"`
	Brand          *string            `json:"brand,omitempty"`
	CategoryID     *string            `json:"categoryId,omitempty"`
	Tags           *[]string          `json:"tags,omitempty"`
	Description    *string            `json:"description,omitempty"`
	DeliveryOption *DeliveryOptionDTO `json:"deliveryOption,omitempty"`
	Variants       *[]VariantDTO      `json:"variants,omitempty"`
	IsActive       *bool              `json:"isActive,omitempty"`
	// DeletedImages lists stored object ids to remove after a successful update.
	DeletedImages []string `json:"deletedImages,omitempty"`
}

// UpdateStockDTO adjusts a variant's stock by a delta, not an absolute value.
type UpdateStockDTO struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
	Stock     int    `json:"stock" binding:"required"`
}
