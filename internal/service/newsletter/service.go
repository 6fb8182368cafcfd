package newsletter

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/internal/observability"
	repo "github.com/Additional-Code/storefront/internal/repository/newsletter"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/storefront/service/newsletter")

// Result is the outcome of a subscription request.
type Result int

const (
	AlreadySubscribed Result = iota
	Created
	Reactivated
)

// Repository is the storage contract the service depends on.
type Repository interface {
	Upsert(ctx context.Context, email string, at time.Time) (repo.Outcome, error)
	Deactivate(ctx context.Context, email string, at time.Time) error
}

// Service manages newsletter subscriptions.
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

// NormalizeEmail validates and lowercases an address. Any non-empty string
// containing "@" is accepted.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errorbank.BadRequest("email is required")
	}
	if !strings.Contains(email, "@") {
		return "", errorbank.BadRequest("invalid email address")
	}
	return email, nil
}

// Subscribe activates the subscriber for email.
func (s *Service) Subscribe(ctx context.Context, rawEmail string) (Result, error) {
	ctx, span := serviceTracer.Start(ctx, "NewsletterService.Subscribe")
	defer span.End()

	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		observability.NewsletterSubscriptionsTotal.WithLabelValues("invalid").Inc()
		return AlreadySubscribed, err
	}

	outcome, err := s.repo.Upsert(ctx, email, s.now())
	if err != nil {
		observability.NewsletterSubscriptionsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		s.logger.Error("newsletter subscribe failed", zap.Error(err))
		return AlreadySubscribed, errorbank.Internal("failed to subscribe", errorbank.WithCause(err))
	}

	observability.NewsletterSubscriptionsTotal.WithLabelValues(outcome.String()).Inc()

	var result Result
	switch outcome {
	case repo.OutcomeCreated:
		result = Created
	case repo.OutcomeReactivated:
		result = Reactivated
	default:
		return AlreadySubscribed, nil
	}

	s.logger.Info("newsletter subscription stored", zap.String("outcome", outcome.String()))
	s.publish(ctx, messaging.EventNewsletterSubscribed, email, outcome.String())
	return result, nil
}

// Unsubscribe opts email out of the newsletter.
func (s *Service) Unsubscribe(ctx context.Context, rawEmail string) error {
	ctx, span := serviceTracer.Start(ctx, "NewsletterService.Unsubscribe")
	defer span.End()

	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, email, s.now()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("subscriber not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "deactivate failed")
		s.logger.Error("newsletter unsubscribe failed", zap.Error(err))
		return errorbank.Internal("failed to unsubscribe", errorbank.WithCause(err))
	}

	s.publish(ctx, messaging.EventNewsletterUnsubscribed, email, "unsubscribed")
	return nil
}

func (s *Service) publish(ctx context.Context, eventType, email, outcome string) {
	if !s.messagingEnabled || s.publisher == nil {
		return
	}
	event := messaging.NewsletterChanged{Email: email, Outcome: outcome}
	if err := messaging.PublishEvent(ctx, s.publisher, "newsletter-"+email, eventType, event); err != nil {
		s.logger.Error("publish newsletter event", zap.String("type", eventType), zap.Error(err))
	}
}
