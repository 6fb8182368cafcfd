package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/storefront/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Column names an order column usable as a lookup key.
type Column string

const (
	ColumnID     Column = "id"
	ColumnNumber Column = "order_number"
)

// Key selects a single order by an exact column match.
type Key struct {
	Column Column
	Value  string
}

// ItemOrdering selects the deterministic ordering of line items.
type ItemOrdering int

const (
	// ItemsByID orders items by ascending internal id.
	ItemsByID ItemOrdering = iota
	// ItemsByCreatedAt orders items by ascending creation time, ties broken by id.
	ItemsByCreatedAt
)

// Fulfillment carries the mutable post-placement fields of an order.
type Fulfillment struct {
	Status         string
	TrackingNumber *string
	// KeepTracking leaves the stored tracking number untouched.
	KeepTracking bool
	UpdatedAt    time.Time
}

// Repository encapsulates order and line item access through the privileged handle.
type Repository struct {
	factory *database.Factory
}

// NewRepository wires a repository backed by the client factory.
func NewRepository(factory *database.Factory) *Repository {
	return &Repository{factory: factory}
}

// Find fetches exactly one order matching key.
func (r *Repository) Find(ctx context.Context, key Key) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Find", trace.WithAttributes(
		attribute.String("order.key_column", string(key.Column)),
		attribute.String("order.key", key.Value),
	))
	defer span.End()

	if err := key.validate(); err != nil {
		return nil, err
	}

	db, err := r.factory.Privileged()
	if err != nil {
		return nil, err
	}

	order := new(entity.Order)
	err = db.NewSelect().Model(order).Where("? = ?", bun.Ident(string(key.Column)), key.Value).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// ListItems returns every line item of orderID in the requested ordering.
// The result is never nil.
func (r *Repository) ListItems(ctx context.Context, orderID string, ordering ItemOrdering) ([]entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListItems", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	db, err := r.factory.Privileged()
	if err != nil {
		return nil, err
	}

	items := make([]entity.OrderItem, 0)
	q := db.NewSelect().Model(&items).Where("order_id = ?", orderID)
	switch ordering {
	case ItemsByCreatedAt:
		q = q.Order("created_at ASC", "id ASC")
	default:
		q = q.Order("id ASC")
	}
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select items failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.items", len(items)))
	return items, nil
}

// UpdateFulfillment stamps status, tracking number and updated_at on the
// order matching key and returns the stored row.
func (r *Repository) UpdateFulfillment(ctx context.Context, key Key, f Fulfillment) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateFulfillment", trace.WithAttributes(
		attribute.String("order.key", key.Value),
		attribute.String("order.status", f.Status),
	))
	defer span.End()

	if err := key.validate(); err != nil {
		return nil, err
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now().UTC()
	}

	db, err := r.factory.Privileged()
	if err != nil {
		return nil, err
	}

	updated := new(entity.Order)
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*entity.Order)(nil)).
			Set("order_status = ?", f.Status).
			Set("updated_at = ?", f.UpdatedAt)
		if !f.KeepTracking {
			q = q.Set("tracking_number = ?", f.TrackingNumber)
		}
		res, err := q.Where("? = ?", bun.Ident(string(key.Column)), key.Value).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return tx.NewSelect().Model(updated).Where("? = ?", bun.Ident(string(key.Column)), key.Value).Limit(1).Scan(ctx)
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	return updated, nil
}

// Create persists an order with its line items in a single transaction.
// Missing identifiers and timestamps are assigned here; item totals must
// equal unit price times quantity.
func (r *Repository) Create(ctx context.Context, order *entity.Order, items []entity.OrderItem) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.number", order.OrderNumber)))
	defer span.End()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.OrderStatus == "" {
		order.OrderStatus = entity.OrderStatusPending
	}
	for i := range items {
		if items[i].Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		if !items[i].TotalPrice.Equal(items[i].ExpectedTotal()) {
			return fmt.Errorf("item %d: total_price %s does not match unit_price x quantity %s", i, items[i].TotalPrice, items[i].ExpectedTotal())
		}
		items[i].OrderID = order.ID
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = order.CreatedAt
		}
	}

	db, err := r.factory.Privileged()
	if err != nil {
		return err
	}

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for i := range items {
			if _, err := tx.NewInsert().Model(&items[i]).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

func (k Key) validate() error {
	switch k.Column {
	case ColumnID, ColumnNumber:
	default:
		return fmt.Errorf("unsupported order key column %q", k.Column)
	}
	if k.Value == "" {
		return errors.New("order key is required")
	}
	return nil
}
