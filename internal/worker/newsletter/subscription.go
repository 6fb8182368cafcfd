package newsletter

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/internal/worker"
)

// Module registers newsletter worker handlers.
var Module = fx.Module("worker_newsletter",
	fx.Provide(
		fx.Annotate(
			NewSubscribedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewUnsubscribedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewSubscribedHandler logs opt-ins.
func NewSubscribedHandler(logger *zap.Logger) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		EventType: messaging.EventNewsletterSubscribed,
		Handler:   logChange(logger, "newsletter subscription"),
	}
}

// NewUnsubscribedHandler logs opt-outs.
func NewUnsubscribedHandler(logger *zap.Logger) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		EventType: messaging.EventNewsletterUnsubscribed,
		Handler:   logChange(logger, "newsletter unsubscription"),
	}
}

func logChange(logger *zap.Logger, msg string) worker.EventHandler {
	return func(ctx context.Context, env messaging.Envelope) error {
		var event messaging.NewsletterChanged
		if err := json.Unmarshal(env.Payload, &event); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		logger.Info(msg,
			zap.String("email", event.Email),
			zap.String("outcome", event.Outcome),
			zap.Time("occurred_at", env.OccurredAt),
		)
		return nil
	}
}
