package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Image holds the stored-object metadata for an uploaded picture.
type Image struct {
	PublicId  string `bson:"publicId" json:"publicId"`
	Url       string `bson:"url" json:"url"`
	SecureUrl string `bson:"secureUrl" json:"secureUrl"`
	Folder    string `bson:"folder,omitempty" json:"folder,omitempty"`
	Format    string `bson:"format,omitempty" json:"format,omitempty"`
	Width     int    `bson:"width,omitempty" json:"width,omitempty"`
	Height    int    `bson:"height,omitempty" json:"height,omitempty"`
	Bytes     int64  `bson:"bytes,omitempty" json:"bytes,omitempty"`
}

// PriceTier maps a minimum purchase quantity to the unit price that applies
// once the quantity meets or exceeds it. Discount is informational only.
type PriceTier struct {
	MinQuantity int     `bson:"minQuantity" json:"minQuantity"`
	Price       float64 `bson:"price" json:"price"`
	Discount    float64 `bson:"discount" json:"discount"`
}

type VariantMeasurement struct {
	Value float64 `bson:"value,omitempty" json:"value,omitempty"`
	Unit  string  `bson:"unit,omitempty" json:"unit,omitempty"`
	Label string  `bson:"label,omitempty" json:"label,omitempty"`
}

// Variant is a purchasable configuration of a product. Variants are embedded
// in their owning product and are only ever written through the product's
// update path; the id is stable but scoped to the parent document.
type Variant struct {
	Id            bson.ObjectID       `bson:"_id" json:"id"`
	PackOf        int                 `bson:"packOf" json:"packOf"`
	Measurement   *VariantMeasurement `bson:"measurement,omitempty" json:"measurement,omitempty"`
	Expiry        *time.Time          `bson:"expiry,omitempty" json:"expiry,omitempty"`
	MRP           float64             `bson:"mrp" json:"mrp"`
	SellingPrices []PriceTier         `bson:"sellingPrices" json:"sellingPrices"`
	Images        []Image             `bson:"images" json:"images"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	Stock         int                 `bson:"stock" json:"stock"`
}

type DeliveryOption struct {
	IsCancel     bool `bson:"isCancel" json:"isCancel"`
	IsReturnable bool `bson:"isReturnable" json:"isReturnable"`
	IsWarranty   bool `bson:"isWarranty" json:"isWarranty"`
}

type Product struct {
	Id             bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string         `bson:"name" json:"name"`
	Slug           string         `bson:"slug" json:"slug"`
	Brand          string         `bson:"brand" json:"brand"`
	CategoryId     bson.ObjectID  `bson:"categoryId" json:"categoryId"`
	Tags           []string       `bson:"tags" json:"tags"`
	Description    string         `bson:"description,omitempty" json:"description,omitempty"`
	DeliveryOption DeliveryOption `bson:"deliveryOption" json:"deliveryOption"`
	Thumbnail      Image          `bson:"thumbnail" json:"thumbnail"`
	Variants       []Variant      `bson:"variants" json:"variants"`
	IsActive       bool           `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// VariantByID locates an embedded variant. The second return is false when no
// variant with that id exists on the product.
func (p *Product) VariantByID(id bson.ObjectID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Id == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// UnitPriceFor selects the unit price for the requested quantity: the tier
// with the greatest minQuantity the quantity still satisfies wins, and MRP is
// the fallback when no tier qualifies. Tiers are not assumed to be pre-sorted
// by the writer.
func (v Variant) UnitPriceFor(quantity int) float64 {
	tiers := make([]PriceTier, len(v.SellingPrices))
	copy(tiers, v.SellingPrices)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity > tiers[j].MinQuantity
	})
	for _, t := range tiers {
		if t.MinQuantity <= quantity {
			return t.Price
		}
	}
	return v.MRP
}
