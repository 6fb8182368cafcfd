package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Order statuses accepted by the orders_order_status_check constraint.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// Order represents a placed storefront order.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID          string    `bun:"id,pk" json:"id"`
	OrderNumber string    `bun:"order_number,notnull,unique" json:"order_number"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`

	Subtotal     decimal.Decimal `bun:"subtotal,type:numeric(12,2),notnull" json:"subtotal"`
	ShippingCost decimal.Decimal `bun:"shipping_cost,type:numeric(12,2),notnull" json:"shipping_cost"`
	Total        decimal.Decimal `bun:"total,type:numeric(12,2),notnull" json:"total"`

	OrderStatus                  string  `bun:"order_status,notnull" json:"order_status"`
	PaymentMethod                string  `bun:"payment_method" json:"payment_method"`
	PaymentStatus                string  `bun:"payment_status" json:"payment_status"`
	PaymentProcessorID           *string `bun:"payment_processor_id" json:"payment_processor_id"`
	PaymentProcessorStatus       *string `bun:"payment_processor_status" json:"payment_processor_status"`
	PaymentProcessorStatusDetail *string `bun:"payment_processor_status_detail" json:"payment_processor_status_detail"`

	CustomerName  string `bun:"customer_name,notnull" json:"customer_name"`
	CustomerEmail string `bun:"customer_email,notnull" json:"customer_email"`
	CustomerPhone string `bun:"customer_phone" json:"customer_phone"`

	ShippingAddress    string `bun:"shipping_address" json:"shipping_address"`
	ShippingCity       string `bun:"shipping_city" json:"shipping_city"`
	ShippingDepartment string `bun:"shipping_department" json:"shipping_department"`
	ShippingPostalCode string `bun:"shipping_postal_code" json:"shipping_postal_code"`

	Notes          *string `bun:"notes" json:"notes"`
	TrackingNumber *string `bun:"tracking_number" json:"tracking_number"`
}

// OrderItem is a denormalized line item captured when the order was placed.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID           int64           `bun:"id,pk,autoincrement" json:"id"`
	OrderID      string          `bun:"order_id,notnull" json:"order_id"`
	ProductID    *int64          `bun:"product_id" json:"product_id"`
	ProductName  string          `bun:"product_name,notnull" json:"product_name"`
	ProductModel string          `bun:"product_model" json:"product_model"`
	ProductImage string          `bun:"product_image" json:"product_image"`
	Quantity     int             `bun:"quantity,notnull" json:"quantity"`
	UnitPrice    decimal.Decimal `bun:"unit_price,type:numeric(12,2),notnull" json:"unit_price"`
	TotalPrice   decimal.Decimal `bun:"total_price,type:numeric(12,2),notnull" json:"total_price"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ExpectedTotal is unit price times quantity.
func (i OrderItem) ExpectedTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
