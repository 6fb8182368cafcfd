package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/storefront/internal/entity"
)

// OrderSummary is the customer-facing projection of an order.
type OrderSummary struct {
	ID                 string          `json:"id"`
	OrderNumber        string          `json:"order_number"`
	CreatedAt          time.Time       `json:"created_at"`
	OrderStatus        string          `json:"order_status"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentStatus      string          `json:"payment_status"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	Total              decimal.Decimal `json:"total"`
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email"`
	ShippingAddress    string          `json:"shipping_address"`
	ShippingCity       string          `json:"shipping_city"`
	ShippingDepartment string          `json:"shipping_department"`
	TrackingNumber     *string         `json:"tracking_number"`
}

// OrderItemResponse is a line item as shown to customers and operators.
type OrderItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    *int64          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductModel string          `json:"product_model"`
	ProductImage string          `json:"product_image"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderDetailsResponse is the body of the customer order lookup.
type OrderDetailsResponse struct {
	OK    bool                `json:"ok"`
	Order OrderSummary        `json:"order"`
	Items []OrderItemResponse `json:"items"`
}

// AdminOrderResponse is the full order row with its items appended.
type AdminOrderResponse struct {
	entity.Order
	Items []OrderItemResponse `json:"items"`
}

// UpdateOrderRequest is the body accepted by the admin order update.
type UpdateOrderRequest struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"tracking_number"`
}

// NewOrderSummary projects an order to its customer-facing fields.
func NewOrderSummary(o *entity.Order) OrderSummary {
	return OrderSummary{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CreatedAt:          o.CreatedAt,
		OrderStatus:        o.OrderStatus,
		PaymentMethod:      o.PaymentMethod,
		PaymentStatus:      o.PaymentStatus,
		Subtotal:           o.Subtotal,
		ShippingCost:       o.ShippingCost,
		Total:              o.Total,
		CustomerName:       o.CustomerName,
		CustomerEmail:      o.CustomerEmail,
		ShippingAddress:    o.ShippingAddress,
		ShippingCity:       o.ShippingCity,
		ShippingDepartment: o.ShippingDepartment,
		TrackingNumber:     o.TrackingNumber,
	}
}

// NewOrderItems maps items, always returning a non-nil slice.
func NewOrderItems(items []entity.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductModel: it.ProductModel,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.TotalPrice,
			CreatedAt:    it.CreatedAt,
		})
	}
	return out
}
