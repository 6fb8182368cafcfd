package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/internal/observability"
	repo "github.com/Additional-Code/storefront/internal/repository/order"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/storefront/service/order")

// LookupMode selects how an order key is interpreted.
type LookupMode int

const (
	// LookupByID matches the internal identifier; items come back in id order.
	LookupByID LookupMode = iota
	// LookupByNumber matches the human-readable order number; items come back
	// in creation order.
	LookupByNumber
)

func (m LookupMode) String() string {
	if m == LookupByNumber {
		return "order_number"
	}
	return "id"
}

func (m LookupMode) key(value string) repo.Key {
	if m == LookupByNumber {
		return repo.Key{Column: repo.ColumnNumber, Value: value}
	}
	return repo.Key{Column: repo.ColumnID, Value: value}
}

func (m LookupMode) itemOrdering() repo.ItemOrdering {
	if m == LookupByNumber {
		return repo.ItemsByCreatedAt
	}
	return repo.ItemsByID
}

// Repository is the storage contract the service depends on.
type Repository interface {
	Find(ctx context.Context, key repo.Key) (*entity.Order, error)
	ListItems(ctx context.Context, orderID string, ordering repo.ItemOrdering) ([]entity.OrderItem, error)
	UpdateFulfillment(ctx context.Context, key repo.Key, f repo.Fulfillment) (*entity.Order, error)
}

// OrderWithItems is an order together with all of its line items.
type OrderWithItems struct {
	Order *entity.Order
	Items []entity.OrderItem
}

// UpdateInput carries the fields an operator may change after placement.
type UpdateInput struct {
	Status string
	// TrackingNumber nil keeps the stored value; blank clears it.
	TrackingNumber *string
}

// Service looks up and updates orders.
type Service struct {
	repo             Repository
	logger           *zap.Logger
	publisher        messaging.Client
	messagingEnabled bool
	now              func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Publisher, p.Logger, p.Config.Messaging.Enabled)
}

// New builds a Service over any Repository implementation.
func New(r Repository, publisher messaging.Client, logger *zap.Logger, messagingEnabled bool) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:             r,
		logger:           logger,
		publisher:        publisher,
		messagingEnabled: messagingEnabled,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the order matching key together with its items. Orders are
// always read from the store.
func (s *Service) Get(ctx context.Context, key string, mode LookupMode) (*OrderWithItems, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(
		attribute.String("order.lookup_mode", mode.String()),
		attribute.String("order.key", key),
	))
	defer span.End()

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errorbank.BadRequest("order identifier is required")
	}

	order, err := s.repo.Find(ctx, mode.key(key))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			observability.OrderLookupsTotal.WithLabelValues(mode.String(), "not_found").Inc()
			return nil, errorbank.NotFound("order not found")
		}
		// Callers still see a 404; the metric keeps outages apart.
		observability.OrderLookupsTotal.WithLabelValues(mode.String(), "lookup_error").Inc()
		s.logger.Warn("order lookup failed", zap.String("mode", mode.String()), zap.String("key", key), zap.Error(err))
		span.RecordError(err)
		return nil, errorbank.NotFound("order not found", errorbank.WithCause(err))
	}

	items, err := s.repo.ListItems(ctx, order.ID, mode.itemOrdering())
	if err != nil {
		observability.OrderLookupsTotal.WithLabelValues(mode.String(), "items_failed").Inc()
		s.logger.Error("order items lookup failed", zap.String("order_id", order.ID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "items query failed")
		return nil, errorbank.Internal("failed to load order items", errorbank.WithCause(err))
	}
	if items == nil {
		items = []entity.OrderItem{}
	}

	observability.OrderLookupsTotal.WithLabelValues(mode.String(), "found").Inc()
	span.SetAttributes(attribute.Int("order.items", len(items)))
	return &OrderWithItems{Order: order, Items: items}, nil
}

// UpdateFulfillment sets status and tracking number on the order matching key
// and returns the updated row. Store-reported failures are treated as invalid
// input; configuration and cancellation failures are internal.
func (s *Service) UpdateFulfillment(ctx context.Context, key string, mode LookupMode, in UpdateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateFulfillment", trace.WithAttributes(
		attribute.String("order.key", key),
		attribute.String("order.status", in.Status),
	))
	defer span.End()

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errorbank.BadRequest("order identifier is required")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		return nil, errorbank.BadRequest("status is required")
	}
	var tracking *string
	if in.TrackingNumber != nil {
		if t := strings.TrimSpace(*in.TrackingNumber); t != "" {
			tracking = &t
		}
	}

	updated, err := s.repo.UpdateFulfillment(ctx, mode.key(key), repo.Fulfillment{
		Status:         status,
		TrackingNumber: tracking,
		KeepTracking:   in.TrackingNumber == nil,
		UpdatedAt:      s.now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, s.classifyUpdateError(key, err)
	}

	observability.OrderUpdatesTotal.WithLabelValues("updated").Inc()
	s.logger.Info("order fulfillment updated",
		zap.String("order_number", updated.OrderNumber),
		zap.String("status", updated.OrderStatus),
	)
	s.publishStatusChanged(ctx, updated)
	return updated, nil
}

func (s *Service) classifyUpdateError(key string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		observability.OrderUpdatesTotal.WithLabelValues("not_found").Inc()
		return errorbank.NotFound("order not found")
	case errors.Is(err, database.ErrMissingURL),
		errors.Is(err, database.ErrMissingCredential),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		observability.OrderUpdatesTotal.WithLabelValues("error").Inc()
		s.logger.Error("order update failed", zap.String("key", key), zap.Error(err))
		return errorbank.Internal("failed to update order", errorbank.WithCause(err))
	default:
		observability.OrderUpdatesTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("order update rejected by store", zap.String("key", key), zap.Error(err))
		return errorbank.BadRequest("order update rejected", errorbank.WithCause(err))
	}
}

func (s *Service) publishStatusChanged(ctx context.Context, order *entity.Order) {
	if !s.messagingEnabled || s.publisher == nil {
		return
	}
	event := messaging.OrderStatusChanged{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.OrderStatus,
		TrackingNumber: order.TrackingNumber,
	}
	if err := messaging.PublishEvent(ctx, s.publisher, "order-"+order.OrderNumber, messaging.EventOrderStatusChanged, event); err != nil {
		s.logger.Error("publish order status changed", zap.Error(err))
	}
}
