package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func tieredVariant() Variant {
	return Variant{
		Id:  bson.NewObjectID(),
		MRP: 120,
		SellingPrices: []PriceTier{
			{MinQuantity: 1, Price: 100},
			{MinQuantity: 10, Price: 90},
			{MinQuantity: 50, Price: 80},
		},
	}
}

func TestUnitPriceFor(t *testing.T) {
	v := tieredVariant()

	cases := []struct {
		quantity int
		want     float64
	}{
		{1, 100},
		{9, 100},
		{10, 90},
		{49, 90},
		{50, 80},
		{75, 80},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, v.UnitPriceFor(tc.quantity), "quantity %d", tc.quantity)
	}
}

func TestUnitPriceForUnsortedTiers(t *testing.T) {
	v := tieredVariant()
	v.SellingPrices = []PriceTier{
		{MinQuantity: 50, Price: 80},
		{MinQuantity: 1, Price: 100},
		{MinQuantity: 10, Price: 90},
	}

	assert.Equal(t, 90.0, v.UnitPriceFor(12))
	assert.Equal(t, 100.0, v.UnitPriceFor(1))

	// The stored tier order must not change.
	assert.Equal(t, 50, v.SellingPrices[0].MinQuantity)
}

func TestUnitPriceForFallsBackToMRP(t *testing.T) {
	v := Variant{MRP: 120}
	assert.Equal(t, 120.0, v.UnitPriceFor(5))

	// No tier matches when the lowest minQuantity is above the quantity.
	v.SellingPrices = []PriceTier{{MinQuantity: 10, Price: 90}}
	assert.Equal(t, 120.0, v.UnitPriceFor(3))
}

func TestVariantByID(t *testing.T) {
	first := tieredVariant()
	second := tieredVariant()
	p := Product{Variants: []Variant{first, second}}

	got, ok := p.VariantByID(second.Id)
	require.True(t, ok)
	assert.Equal(t, second.Id, got.Id)

	_, ok = p.VariantByID(bson.NewObjectID())
	assert.False(t, ok)
}
