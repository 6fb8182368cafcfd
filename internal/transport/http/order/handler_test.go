package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/storefront/internal/database/dbtest"
	"github.com/Additional-Code/storefront/internal/entity"
	repo "github.com/Additional-Code/storefront/internal/repository/order"
	httpserver "github.com/Additional-Code/storefront/internal/server/http"
	service "github.com/Additional-Code/storefront/internal/service/order"
)

const adminToken = "s3cret"

type fixture struct {
	e     *echo.Echo
	order *entity.Order
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := repo.NewRepository(dbtest.NewFactory(t))

	order := &entity.Order{
		OrderNumber:   "SF-2001",
		Subtotal:      decimal.RequireFromString("100"),
		ShippingCost:  decimal.RequireFromString("0"),
		Total:         decimal.RequireFromString("100"),
		PaymentMethod: "card",
		PaymentStatus: "approved",
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
	}
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	items := []entity.OrderItem{
		{ProductName: "Lens", Quantity: 1, UnitPrice: decimal.RequireFromString("40"), TotalPrice: decimal.RequireFromString("40"), CreatedAt: base.Add(time.Minute)},
		{ProductName: "Cam", Quantity: 2, UnitPrice: decimal.RequireFromString("30"), TotalPrice: decimal.RequireFromString("60"), CreatedAt: base},
	}
	require.NoError(t, store.Create(ctx, order, items))

	e := echo.New()
	e.Use(httpserver.ErrorDetail(true))
	admin := &httpserver.AdminGroup{Group: e.Group("/admin", httpserver.AdminAuth(adminToken))}
	Register(e, admin, NewHandler(service.New(store, nil, nil, false)))

	return fixture{e: e, order: order}
}

func (f fixture) do(method, target, body string, admin bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if admin {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminToken)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestOrderDetails(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/order-details?orderId="+f.order.ID, "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK    bool `json:"ok"`
		Order struct {
			ID          string `json:"id"`
			OrderNumber string `json:"order_number"`
		} `json:"order"`
		Items []struct {
			ID          int64  `json:"id"`
			ProductName string `json:"product_name"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, f.order.ID, body.Order.ID)
	require.Len(t, body.Items, 2)
	assert.Less(t, body.Items[0].ID, body.Items[1].ID)
	assert.Equal(t, "Lens", body.Items[0].ProductName)
}

func TestOrderDetailsErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/order-details", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/order-details?orderId=missing", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"order not found"`)
}

func TestAdminGetByNumberAndID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/admin/orders/SF-2001", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SF-2001", body["order_number"])
	assert.Equal(t, "ana@example.com", body["customer_email"])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "Cam", items[0].(map[string]any)["product_name"])

	rec = f.do(http.MethodGet, "/admin/orders/"+f.order.ID, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order_number":"SF-2001"`)
}

func TestAdminRequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/admin/orders/SF-2001", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminUpdate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPatch, "/admin/orders/SF-2001", `{"status":"shipped","tracking_number":"TRK-9"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated entity.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, entity.OrderStatusShipped, updated.OrderStatus)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-9", *updated.TrackingNumber)
}

func TestAdminUpdateStatusOnlyKeepsTracking(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPatch, "/admin/orders/SF-2001", `{"status":"shipped","tracking_number":"TRK-1"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPatch, "/admin/orders/SF-2001", `{"status":"delivered"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated entity.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, entity.OrderStatusDelivered, updated.OrderStatus)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-1", *updated.TrackingNumber)

	rec = f.do(http.MethodPatch, "/admin/orders/SF-2001", `{"status":"delivered","tracking_number":""}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	updated = entity.Order{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Nil(t, updated.TrackingNumber)
}

func TestAdminUpdateErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{name: "missing status", target: "/admin/orders/SF-2001", body: `{"tracking_number":"x"}`, status: http.StatusBadRequest},
		{name: "constraint violation", target: "/admin/orders/SF-2001", body: `{"status":"teleported"}`, status: http.StatusBadRequest},
		{name: "malformed body", target: "/admin/orders/SF-2001", body: `{"status":`, status: http.StatusBadRequest},
		{name: "unknown order", target: "/admin/orders/SF-404", body: `{"status":"shipped"}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPatch, tt.target, tt.body, true)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, service.LookupByID, resolveMode("3f1c2b8e-7d4a-4c11-9a55-2a0e6b1f9c01"))
	assert.Equal(t, service.LookupByNumber, resolveMode("SF-2001"))
}
