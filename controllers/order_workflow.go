package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ursretail/ursbackend/dto"
	"github.com/ursretail/ursbackend/models"
	"github.com/ursretail/ursbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// orderError carries the HTTP status alongside the user-facing message so the
// placement and cancellation handlers can short-circuit on the first
// violation without inspecting message text.
type orderError struct {
	Status  int
	Message string
}

func (e *orderError) Error() string { return e.Message }

func invalidRequest(msg string) *orderError {
	return &orderError{Status: http.StatusBadRequest, Message: msg}
}

type orderLineInput struct {
	ProductID bson.ObjectID
	VariantID bson.ObjectID
	Quantity  int
}

func parseOrderLines(lines []dto.OrderLineDTO) ([]orderLineInput, *orderError) {
	if len(lines) == 0 {
		return nil, invalidRequest("order must contain at least one product")
	}
	parsed := make([]orderLineInput, 0, len(lines))
	for _, l := range lines {
		pid, err := bson.ObjectIDFromHex(l.ProductID)
		if err != nil {
			return nil, invalidRequest("invalid productId")
		}
		vid, err := bson.ObjectIDFromHex(l.VariantID)
		if err != nil {
			return nil, invalidRequest("invalid variantId")
		}
		if l.Quantity < 1 {
			return nil, invalidRequest("quantity must be at least 1")
		}
		parsed = append(parsed, orderLineInput{ProductID: pid, VariantID: vid, Quantity: l.Quantity})
	}
	return parsed, nil
}

// validateAddress enforces the required delivery fields in a fixed order so
// the first missing field names the failure.
func validateAddress(a dto.AddressDTO) *orderError {
	required := []struct {
		name  string
		value string
	}{
		{"receiverName", a.ReceiverName},
		{"receiverMobile", a.ReceiverMobile},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"pincode", a.Pincode},
		{"label", a.Label},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalidRequest(fmt.Sprintf("address field %s is required", f.name))
		}
	}
	return nil
}

func addressFromDTO(a dto.AddressDTO) models.Address {
	return models.Address{
		ReceiverName:   strings.TrimSpace(a.ReceiverName),
		ReceiverMobile: strings.TrimSpace(a.ReceiverMobile),
		AddressLine1:   strings.TrimSpace(a.AddressLine1),
		AddressLine2:   strings.TrimSpace(a.AddressLine2),
		City:           strings.TrimSpace(a.City),
		Pincode:        strings.TrimSpace(a.Pincode),
		Label:          strings.TrimSpace(a.Label),
	}
}

// buildOrderLines validates every requested line against the loaded products
// and resolves the unit price snapshot. Products are keyed by hex id. The
// stock check here is a pre-check only; the authoritative check is the
// conditional decrement applied at commit time.
func buildOrderLines(products map[string]*models.Product, in []orderLineInput) ([]models.OrderLine, float64, *orderError) {
	lines := make([]models.OrderLine, 0, len(in))
	var total float64
	for _, l := range in {
		product, ok := products[l.ProductID.Hex()]
		if !ok || !product.IsActive {
			return nil, 0, &orderError{Status: http.StatusNotFound, Message: "No Product Found"}
		}
		variant, ok := product.VariantByID(l.VariantID)
		if !ok {
			return nil, 0, &orderError{Status: http.StatusNotFound, Message: "No Variant Found for this Product"}
		}
		if !variant.IsActive {
			return nil, 0, invalidRequest(fmt.Sprintf("variant of %s is not available", product.Name))
		}
		if variant.Stock < l.Quantity {
			return nil, 0, insufficientStock(product.Name, l.Quantity, variant.Stock)
		}

		price := variant.UnitPriceFor(l.Quantity)
		lines = append(lines, models.OrderLine{
			ProductId: l.ProductID,
			VariantId: l.VariantID,
			Quantity:  l.Quantity,
			Price:     price,
		})
		total += price * float64(l.Quantity)
	}
	return lines, total, nil
}

func insufficientStock(productName string, requested, available int) *orderError {
	return invalidRequest(fmt.Sprintf(
		"insufficient stock for %s: requested %d, available %d",
		productName, requested, available,
	))
}

// createdAtWindow builds the createdAt range shared by the admin order list
// and the reports endpoint. A date-only "to" value is inclusive of that whole
// day.
func createdAtWindow(fromStr, toStr string) bson.M {
	window := bson.M{}
	if from, ok := utils.ParseDateQuery(fromStr); ok {
		window["$gte"] = from
	}
	if to, ok := utils.ParseDateQuery(toStr); ok {
		if len(toStr) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		window["$lte"] = to
	}
	return window
}

// cancellationGuard checks ownership and status before any stock is restored.
func cancellationGuard(order *models.Order, callerID bson.ObjectID) *orderError {
	if order.UserId != callerID {
		return &orderError{Status: http.StatusForbidden, Message: "this order belongs to another account"}
	}
	if !order.Status.Cancellable() {
		return invalidRequest(fmt.Sprintf("order cannot be cancelled: status is %s", order.Status))
	}
	return nil
}
