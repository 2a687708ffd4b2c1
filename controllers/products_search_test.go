package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ursretail/ursbackend/dto"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestBuildProductSearchFilterFreeText(t *testing.T) {
	filter := buildProductSearchFilter(productSearchParams{Search: "rice (5kg)"})

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 5)

	// Regex metacharacters in the query must be escaped.
	name := or[0].(bson.M)["name"].(bson.M)
	assert.Equal(t, `rice \(5kg\)`, name["$regex"])

	// Free text wins over the structured filters.
	assert.NotContains(t, filter, "brand")
}

func TestBuildProductSearchFilterStructured(t *testing.T) {
	min, max := 50.0, 120.0
	filter := buildProductSearchFilter(productSearchParams{
		Brands:   []string{"Amul", "Tata"},
		Tags:     []string{"organic"},
		MinPrice: &min,
		MaxPrice: &max,
		InStock:  true,
	})

	assert.Equal(t, bson.M{"$in": []string{"Amul", "Tata"}}, filter["brand"])
	assert.Equal(t, bson.M{"$in": []string{"organic"}}, filter["tags"])
	assert.Equal(t, bson.M{"$gt": 0}, filter["variants.stock"])
	assert.Equal(t,
		bson.M{"$elemMatch": bson.M{"price": bson.M{"$gte": 50.0, "$lte": 120.0}}},
		filter["variants.sellingPrices"])
	assert.Equal(t, bson.M{"$ne": false}, filter["isActive"])
}

func TestBuildProductSearchFilterDefaults(t *testing.T) {
	filter := buildProductSearchFilter(productSearchParams{})
	assert.Equal(t, bson.M{"isActive": bson.M{"$ne": false}}, filter)
}

func TestSuggestionFilter(t *testing.T) {
	filter := suggestionFilter("bas (5kg")

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 3)

	// Prefix-anchored and escaped.
	name := or[0].(bson.M)["name"].(bson.M)
	assert.Equal(t, `^bas \(5kg`, name["$regex"])
	assert.Equal(t, "i", name["$options"])

	assert.Equal(t, bson.M{"$ne": false}, filter["isActive"])
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a, b ,,"))
	assert.Empty(t, splitCSV(""))
}

func TestDedupeTags(t *testing.T) {
	assert.Equal(t, []string{"rice", "organic"}, dedupeTags([]string{"rice", " organic ", "rice", ""}))
}

func TestVariantsFromDTO(t *testing.T) {
	active := false
	variants, oerr := variantsFromDTO([]dto.VariantDTO{
		{
			PackOf:        0,
			MRP:           120,
			Stock:         10,
			IsActive:      &active,
			SellingPrices: []dto.PriceTierDTO{{MinQuantity: 1, Price: 100, Discount: 16.7}},
		},
	})
	require.Nil(t, oerr)
	require.Len(t, variants, 1)
	assert.Equal(t, 1, variants[0].PackOf)
	assert.False(t, variants[0].IsActive)
	assert.False(t, variants[0].Id.IsZero())
	assert.Equal(t, 100.0, variants[0].SellingPrices[0].Price)
}

func TestVariantsFromDTORejectsBadInput(t *testing.T) {
	_, oerr := variantsFromDTO([]dto.VariantDTO{{MRP: 100}})
	require.NotNil(t, oerr)
	assert.Equal(t, "each variant must have at least one selling price tier", oerr.Message)

	_, oerr = variantsFromDTO([]dto.VariantDTO{
		{MRP: 100, SellingPrices: []dto.PriceTierDTO{{MinQuantity: 0, Price: 90}}},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, "tier minQuantity must be at least 1", oerr.Message)

	_, oerr = variantsFromDTO([]dto.VariantDTO{
		{MRP: -1, SellingPrices: []dto.PriceTierDTO{{MinQuantity: 1, Price: 90}}},
	})
	require.NotNil(t, oerr)

	_, oerr = variantsFromDTO([]dto.VariantDTO{
		{MRP: 100, SellingPrices: []dto.PriceTierDTO{{MinQuantity: 1, Price: 90, Discount: 101}}},
	})
	require.NotNil(t, oerr)
}
