package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ursretail/ursbackend/dto"
	"github.com/ursretail/ursbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func testProduct(stock int) *models.Product {
	return &models.Product{
		Id:       bson.NewObjectID(),
		Name:     "Basmati Rice 5kg",
		IsActive: true,
		Variants: []models.Variant{
			{
				Id:       bson.NewObjectID(),
				MRP:      120,
				Stock:    stock,
				IsActive: true,
				SellingPrices: []models.PriceTier{
					{MinQuantity: 1, Price: 100},
					{MinQuantity: 10, Price: 90},
					{MinQuantity: 50, Price: 80},
				},
			},
		},
	}
}

func TestParseOrderLines(t *testing.T) {
	pid := bson.NewObjectID()
	vid := bson.NewObjectID()

	lines, oerr := parseOrderLines([]dto.OrderLineDTO{
		{ProductID: pid.Hex(), VariantID: vid.Hex(), Quantity: 3},
	})
	require.Nil(t, oerr)
	require.Len(t, lines, 1)
	assert.Equal(t, pid, lines[0].ProductID)
	assert.Equal(t, vid, lines[0].VariantID)
	assert.Equal(t, 3, lines[0].Quantity)

	_, oerr = parseOrderLines(nil)
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusBadRequest, oerr.Status)

	_, oerr = parseOrderLines([]dto.OrderLineDTO{
		{ProductID: "nothex", VariantID: vid.Hex(), Quantity: 1},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, "invalid productId", oerr.Message)

	_, oerr = parseOrderLines([]dto.OrderLineDTO{
		{ProductID: pid.Hex(), VariantID: vid.Hex(), Quantity: 0},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, "quantity must be at least 1", oerr.Message)
}

func TestValidateAddress(t *testing.T) {
	full := dto.AddressDTO{
		ReceiverName:   "Asha",
		ReceiverMobile: "9876543210",
		AddressLine1:   "12 MG Road",
		City:           "Pune",
		Pincode:        "411001",
		Label:          "home",
	}
	assert.Nil(t, validateAddress(full))

	// AddressLine2 is the only optional field.
	withLine2 := full
	withLine2.AddressLine2 = "Near the park"
	assert.Nil(t, validateAddress(withLine2))

	missingCity := full
	missingCity.City = "   "
	oerr := validateAddress(missingCity)
	require.NotNil(t, oerr)
	assert.Equal(t, "address field city is required", oerr.Message)

	oerr = validateAddress(dto.AddressDTO{})
	require.NotNil(t, oerr)
	assert.Equal(t, "address field receiverName is required", oerr.Message)
}

func TestAddressFromDTOTrims(t *testing.T) {
	addr := addressFromDTO(dto.AddressDTO{
		ReceiverName: "  Asha ",
		City:         " Pune",
		Label:        "home ",
	})
	assert.Equal(t, "Asha", addr.ReceiverName)
	assert.Equal(t, "Pune", addr.City)
	assert.Equal(t, "home", addr.Label)
}

func TestBuildOrderLinesPricingAndTotal(t *testing.T) {
	product := testProduct(100)
	variant := product.Variants[0]
	products := map[string]*models.Product{product.Id.Hex(): product}

	lines, total, oerr := buildOrderLines(products, []orderLineInput{
		{ProductID: product.Id, VariantID: variant.Id, Quantity: 10},
	})
	require.Nil(t, oerr)
	require.Len(t, lines, 1)
	assert.Equal(t, 90.0, lines[0].Price)
	assert.Equal(t, 900.0, total)
}

func TestBuildOrderLinesErrors(t *testing.T) {
	product := testProduct(5)
	variant := product.Variants[0]
	products := map[string]*models.Product{product.Id.Hex(): product}

	_, _, oerr := buildOrderLines(products, []orderLineInput{
		{ProductID: bson.NewObjectID(), VariantID: variant.Id, Quantity: 1},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusNotFound, oerr.Status)
	assert.Equal(t, "No Product Found", oerr.Message)

	_, _, oerr = buildOrderLines(products, []orderLineInput{
		{ProductID: product.Id, VariantID: bson.NewObjectID(), Quantity: 1},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, "No Variant Found for this Product", oerr.Message)

	_, _, oerr = buildOrderLines(products, []orderLineInput{
		{ProductID: product.Id, VariantID: variant.Id, Quantity: 7},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusBadRequest, oerr.Status)
	assert.Equal(t, "insufficient stock for Basmati Rice 5kg: requested 7, available 5", oerr.Message)

	inactive := testProduct(5)
	inactive.IsActive = false
	products[inactive.Id.Hex()] = inactive
	_, _, oerr = buildOrderLines(products, []orderLineInput{
		{ProductID: inactive.Id, VariantID: inactive.Variants[0].Id, Quantity: 1},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusNotFound, oerr.Status)

	disabledVariant := testProduct(5)
	disabledVariant.Variants[0].IsActive = false
	products[disabledVariant.Id.Hex()] = disabledVariant
	_, _, oerr = buildOrderLines(products, []orderLineInput{
		{ProductID: disabledVariant.Id, VariantID: disabledVariant.Variants[0].Id, Quantity: 1},
	})
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusBadRequest, oerr.Status)
}

func TestCreatedAtWindow(t *testing.T) {
	window := createdAtWindow("2026-08-01", "2026-08-15")
	require.Contains(t, window, "$gte")
	require.Contains(t, window, "$lte")

	from := window["$gte"].(time.Time)
	to := window["$lte"].(time.Time)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)

	// A date-only upper bound covers the whole day.
	assert.True(t, to.After(time.Date(2026, 8, 15, 23, 59, 59, 0, time.UTC)))
	assert.True(t, to.Before(time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)))

	// An explicit timestamp is taken as-is.
	window = createdAtWindow("", "2026-08-15T12:00:00Z")
	assert.Equal(t, 12, window["$lte"].(time.Time).Hour())

	assert.Empty(t, createdAtWindow("", ""))
	assert.Empty(t, createdAtWindow("not-a-date", "also-not"))
}

func TestCancellationGuard(t *testing.T) {
	owner := bson.NewObjectID()
	order := &models.Order{UserId: owner, Status: models.OrderStatusPlaced}

	assert.Nil(t, cancellationGuard(order, owner))

	oerr := cancellationGuard(order, bson.NewObjectID())
	require.NotNil(t, oerr)
	assert.Equal(t, http.StatusForbidden, oerr.Status)

	for _, status := range []models.OrderStatus{
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		order := &models.Order{UserId: owner, Status: status}
		oerr := cancellationGuard(order, owner)
		require.NotNil(t, oerr, "status %s", status)
		assert.Equal(t, http.StatusBadRequest, oerr.Status)
		assert.Contains(t, oerr.Message, string(status))
	}
}
