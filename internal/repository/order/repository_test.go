package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/storefront/internal/database/dbtest"
	"github.com/Additional-Code/storefront/internal/entity"
)

func newOrder(number string) *entity.Order {
	return &entity.Order{
		OrderNumber:   number,
		Subtotal:      decimal.RequireFromString("120.00"),
		ShippingCost:  decimal.RequireFromString("10.00"),
		Total:         decimal.RequireFromString("130.00"),
		PaymentMethod: "card",
		PaymentStatus: "approved",
		CustomerName:  "Ana Gómez",
		CustomerEmail: "ana@example.com",
		ShippingCity:  "Medellín",
	}
}

func item(name string, qty int, unit string, createdAt time.Time) entity.OrderItem {
	price := decimal.RequireFromString(unit)
	return entity.OrderItem{
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   price,
		TotalPrice:  price.Mul(decimal.NewFromInt(int64(qty))),
		CreatedAt:   createdAt,
	}
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewFactory(t))

	order := newOrder("SF-1001")
	require.NoError(t, repo.Create(ctx, order, []entity.OrderItem{item("Cam", 2, "60.00", time.Time{})}))
	require.NotEmpty(t, order.ID)

	byID, err := repo.Find(ctx, Key{Column: ColumnID, Value: order.ID})
	require.NoError(t, err)
	assert.Equal(t, "SF-1001", byID.OrderNumber)
	assert.True(t, byID.Total.Equal(decimal.RequireFromString("130")))
	assert.Equal(t, entity.OrderStatusPending, byID.OrderStatus)

	byNumber, err := repo.Find(ctx, Key{Column: ColumnNumber, Value: "SF-1001"})
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	_, err = repo.Find(ctx, Key{Column: ColumnNumber, Value: "SF-404"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindRejectsUnknownColumn(t *testing.T) {
	repo := NewRepository(dbtest.NewFactory(t))

	_, err := repo.Find(context.Background(), Key{Column: "customer_email", Value: "x"})
	assert.Error(t, err)

	_, err = repo.Find(context.Background(), Key{Column: ColumnID})
	assert.Error(t, err)
}

func TestListItemsOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewFactory(t))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	order := newOrder("SF-2001")
	items := []entity.OrderItem{
		item("late", 1, "10.00", base.Add(2*time.Hour)),
		item("early", 1, "20.00", base),
		item("middle", 3, "30.00", base.Add(time.Hour)),
	}
	order.Subtotal = decimal.RequireFromString("120.00")
	require.NoError(t, repo.Create(ctx, order, items))

	byID, err := repo.ListItems(ctx, order.ID, ItemsByID)
	require.NoError(t, err)
	require.Len(t, byID, 3)
	assert.Equal(t, []string{"late", "early", "middle"}, names(byID))
	assert.Less(t, byID[0].ID, byID[1].ID)

	byCreated, err := repo.ListItems(ctx, order.ID, ItemsByCreatedAt)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "middle", "late"}, names(byCreated))
}

func TestListItemsEmptyIsNotNil(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewFactory(t))

	order := newOrder("SF-3001")
	require.NoError(t, repo.Create(ctx, order, nil))

	items, err := repo.ListItems(ctx, order.ID, ItemsByID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCreateRejectsInconsistentTotals(t *testing.T) {
	repo := NewRepository(dbtest.NewFactory(t))

	bad := item("Cam", 2, "60.00", time.Time{})
	bad.TotalPrice = decimal.RequireFromString("60.00")

	err := repo.Create(context.Background(), newOrder("SF-4001"), []entity.OrderItem{bad})
	assert.Error(t, err)
}

func TestUpdateFulfillment(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewFactory(t))

	order := newOrder("SF-5001")
	require.NoError(t, repo.Create(ctx, order, nil))

	tracking := "TRK-778899"
	at := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
	updated, err := repo.UpdateFulfillment(ctx, Key{Column: ColumnNumber, Value: "SF-5001"}, Fulfillment{
		Status:         entity.OrderStatusShipped,
		TrackingNumber: &tracking,
		UpdatedAt:      at,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, updated.ID)
	assert.Equal(t, entity.OrderStatusShipped, updated.OrderStatus)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, tracking, *updated.TrackingNumber)
	assert.True(t, updated.UpdatedAt.Equal(at))
	assert.Equal(t, "SF-5001", updated.OrderNumber)
}

func TestUpdateFulfillmentKeepTracking(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewFactory(t))
	key := Key{Column: ColumnNumber, Value: "SF-5002"}

	require.NoError(t, repo.Create(ctx, newOrder("SF-5002"), nil))

	tracking := "TRK-1"
	_, err := repo.UpdateFulfillment(ctx, key, Fulfillment{Status: entity.OrderStatusShipped, TrackingNumber: &tracking})
	require.NoError(t, err)

	updated, err := repo.UpdateFulfillment(ctx, key, Fulfillment{Status: entity.OrderStatusDelivered, KeepTracking: true})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, updated.OrderStatus)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, tracking, *updated.TrackingNumber)
}

func TestUpdateFulfillmentConstraintViolation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewFactory(t))

	require.NoError(t, repo.Create(ctx, newOrder("SF-6001"), nil))

	_, err := repo.UpdateFulfillment(ctx, Key{Column: ColumnNumber, Value: "SF-6001"}, Fulfillment{Status: "teleported"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	stored, err := repo.Find(ctx, Key{Column: ColumnNumber, Value: "SF-6001"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, stored.OrderStatus)
}

func TestUpdateFulfillmentUnknownOrder(t *testing.T) {
	repo := NewRepository(dbtest.NewFactory(t))

	_, err := repo.UpdateFulfillment(context.Background(), Key{Column: ColumnNumber, Value: "SF-0000"}, Fulfillment{Status: entity.OrderStatusShipped})
	assert.ErrorIs(t, err, ErrNotFound)
}

func names(items []entity.OrderItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductName)
	}
	return out
}
