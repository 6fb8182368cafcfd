package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/storefront/internal/entity"
)

func TestAdminOrderResponseSpreadsOrderColumns(t *testing.T) {
	notes := "leave at the door"
	resp := AdminOrderResponse{
		Order: entity.Order{ID: "id-1", OrderNumber: "ORD-1", Total: decimal.RequireFromString("10.5"), Notes: &notes},
		Items: NewOrderItems(nil),
	}

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "ORD-1", body["order_number"])
	assert.Equal(t, "leave at the door", body["notes"])
	assert.Equal(t, "10.5", body["total"])
	assert.Equal(t, []any{}, body["items"])
	assert.Contains(t, body, "payment_processor_id")
}

func TestOrderSummaryOmitsPaymentProcessorFields(t *testing.T) {
	processor := "mp-123"
	raw, err := json.Marshal(NewOrderSummary(&entity.Order{ID: "id-1", PaymentProcessorID: &processor}))
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "payment_processor_id")
	assert.Contains(t, string(raw), `"tracking_number":null`)
}
