package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/internal/worker"
)

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewStatusChangedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewStatusChangedHandler logs every fulfillment change.
func NewStatusChangedHandler(logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, env messaging.Envelope) error {
		var event messaging.OrderStatusChanged
		if err := json.Unmarshal(env.Payload, &event); err != nil {
			logger.Error("failed to decode order status change", zap.Error(err))

			return fmt.Errorf("decode %s: %w", env.Type, err)
		}

		fields := []zap.Field{
			zap.String("order_id", event.OrderID),
			zap.String("order_number", event.OrderNumber),
			zap.String("status", event.Status),
			zap.Time("occurred_at", env.OccurredAt),
		}
		if event.TrackingNumber != nil {
			fields = append(fields, zap.String("tracking_number", *event.TrackingNumber))
		}
		logger.Info("order status changed", fields...)

		return nil
	}

	return worker.HandlerRegistration{
		EventType: messaging.EventOrderStatusChanged,
		Handler:   handler,
	}
}
