package newsletter

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/storefront/repository/newsletter")

// ErrNotFound is returned when no subscriber has the given email.
var ErrNotFound = errors.New("subscriber not found")

// Outcome describes what Upsert did to the subscriber row.
type Outcome int

const (
	// OutcomeAlreadyActive means the row existed and was active; nothing changed.
	OutcomeAlreadyActive Outcome = iota
	// OutcomeCreated means a new active row was inserted.
	OutcomeCreated
	// OutcomeReactivated means an inactive row was switched back on.
	OutcomeReactivated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeReactivated:
		return "reactivated"
	default:
		return "already_active"
	}
}

// Repository stores newsletter subscribers keyed by their normalized email.
type Repository struct {
	factory *database.Factory
}

// NewRepository wires a repository backed by the client factory.
func NewRepository(factory *database.Factory) *Repository {
	return &Repository{factory: factory}
}

// Upsert activates the subscriber with the given (already normalized) email.
// It never reads before writing: an insert that yields on the unique email
// constraint is followed by a conditional reactivation, so concurrent callers
// for the same email produce a single row.
func (r *Repository) Upsert(ctx context.Context, email string, at time.Time) (Outcome, error) {
	ctx, span := repoTracer.Start(ctx, "NewsletterRepository.Upsert", trace.WithAttributes(attribute.String("subscriber.email", email)))
	defer span.End()

	db, err := r.factory.Privileged()
	if err != nil {
		return OutcomeAlreadyActive, err
	}

	sub := &entity.NewsletterSubscriber{Email: email, Active: true, SubscribedAt: at}
	res, err := insertSubscriber(db, sub).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return OutcomeAlreadyActive, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		span.SetAttributes(attribute.String("subscriber.outcome", OutcomeCreated.String()))
		return OutcomeCreated, nil
	}

	res, err = db.NewUpdate().
		Model((*entity.NewsletterSubscriber)(nil)).
		Set("active = ?", true).
		Set("subscribed_at = ?", at).
		Set("unsubscribed_at = NULL").
		Where("email = ?", email).
		Where("active = ?", false).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reactivate failed")
		return OutcomeAlreadyActive, err
	}

	outcome := OutcomeAlreadyActive
	if n, _ := res.RowsAffected(); n > 0 {
		outcome = OutcomeReactivated
	}
	span.SetAttributes(attribute.String("subscriber.outcome", outcome.String()))
	return outcome, nil
}

// insertSubscriber yields only when the email already exists. MySQL has no
// conflict target, so a no-op duplicate-key update stands in; INSERT IGNORE
// would also turn unrelated errors into warnings.
func insertSubscriber(db *bun.DB, sub *entity.NewsletterSubscriber) *bun.InsertQuery {
	q := db.NewInsert().Model(sub)
	if db.Dialect().Name() == dialect.MySQL {
		return q.On("DUPLICATE KEY UPDATE").Set("id = id")
	}
	return q.On("CONFLICT (email) DO NOTHING").Returning("NULL")
}

// Deactivate opts the subscriber out and stamps unsubscribed_at.
func (r *Repository) Deactivate(ctx context.Context, email string, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "NewsletterRepository.Deactivate", trace.WithAttributes(attribute.String("subscriber.email", email)))
	defer span.End()

	db, err := r.factory.Privileged()
	if err != nil {
		return err
	}

	res, err := db.NewUpdate().
		Model((*entity.NewsletterSubscriber)(nil)).
		Set("active = ?", false).
		Set("unsubscribed_at = ?", at).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deactivate failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Find returns the subscriber row for email.
func (r *Repository) Find(ctx context.Context, email string) (*entity.NewsletterSubscriber, error) {
	ctx, span := repoTracer.Start(ctx, "NewsletterRepository.Find")
	defer span.End()

	db, err := r.factory.Privileged()
	if err != nil {
		return nil, err
	}

	sub := new(entity.NewsletterSubscriber)
	err = db.NewSelect().Model(sub).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sub, nil
}

// Count returns how many rows exist for email; used to verify uniqueness.
func (r *Repository) Count(ctx context.Context, email string) (int, error) {
	db, err := r.factory.Privileged()
	if err != nil {
		return 0, err
	}
	return db.NewSelect().Model((*entity.NewsletterSubscriber)(nil)).Where("email = ?", email).Count(ctx)
}
