package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/storefront/repository/catalog")

// ErrNotFound is returned when a product is missing or inactive.
var ErrNotFound = errors.New("product not found")

// Repository reads the public catalog through the publishable-credential handle.
type Repository struct {
	factory *database.Factory
}

// NewRepository wires a repository backed by the client factory.
func NewRepository(factory *database.Factory) *Repository {
	return &Repository{factory: factory}
}

// ListActiveProducts returns active products ordered by name.
func (r *Repository) ListActiveProducts(ctx context.Context) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListActiveProducts")
	defer span.End()

	db, err := r.factory.Public()
	if err != nil {
		return nil, err
	}

	products := make([]entity.Product, 0)
	err = db.NewSelect().Model(&products).Where("active = ?", true).Order("name ASC", "id ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// GetProductBySlug fetches one active product.
func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetProductBySlug", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	db, err := r.factory.Public()
	if err != nil {
		return nil, err
	}

	product := new(entity.Product)
	err = db.NewSelect().Model(product).Where("slug = ?", slug).Where("active = ?", true).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// ListReviews returns the reviews of a product, newest first, with the author
// profile and product joined when they exist.
func (r *Repository) ListReviews(ctx context.Context, productID int64) ([]entity.ProductReview, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListReviews", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	db, err := r.factory.Public()
	if err != nil {
		return nil, err
	}

	reviews := make([]entity.ProductReview, 0)
	err = db.NewSelect().
		Model(&reviews).
		Relation("Profile").
		Relation("Product", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("id", "name", "model")
		}).
		Where("pr.product_id = ?", productID).
		Order("pr.created_at DESC", "pr.id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return reviews, nil
}
