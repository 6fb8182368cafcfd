package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/cache"
	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/entity"
	repo "github.com/Additional-Code/storefront/internal/repository/catalog"
	"github.com/Additional-Code/storefront/internal/review"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/storefront/service/catalog")

const (
	productListKey   = "catalog:products"
	productKeyPrefix = "catalog:product:"
)

// Repository is the read contract the service depends on.
type Repository interface {
	ListActiveProducts(ctx context.Context) ([]entity.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*entity.Product, error)
	ListReviews(ctx context.Context, productID int64) ([]entity.ProductReview, error)
}

// Service serves the read-only product catalog.
type Service struct {
	repo   Repository
	cache  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Cache, p.Config.Storefront.CatalogCacheTTL, p.Logger)
}

// New builds a Service over any Repository implementation.
func New(r Repository, store cache.Store, ttl time.Duration, logger *zap.Logger) *Service {
	if store == nil {
		store = cache.NewNoop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: r, cache: store, ttl: ttl, logger: logger}
}

// ListProducts returns every active product.
func (s *Service) ListProducts(ctx context.Context) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	var products []entity.Product
	if s.readCache(ctx, productListKey, &products) {
		return products, nil
	}

	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}

	s.writeCache(ctx, productListKey, products)
	return products, nil
}

// GetProduct returns the active product with the given slug.
func (s *Service) GetProduct(ctx context.Context, slug string) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errorbank.BadRequest("product slug is required")
	}

	key := productKeyPrefix + slug
	var cached entity.Product
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	s.writeCache(ctx, key, product)
	return product, nil
}

// ListReviews returns the display reviews of the product with the given slug.
// Rows that cannot be normalized are skipped.
func (s *Service) ListReviews(ctx context.Context, slug string) ([]review.Review, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListReviews", trace.WithAttributes(attribute.Int64("product.id", product.ID)))
	defer span.End()

	rows, err := s.repo.ListReviews(ctx, product.ID)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load reviews", errorbank.WithCause(err))
	}

	reviews := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		normalized, err := review.Normalize(ToRow(row))
		if err != nil {
			s.logger.Warn("skipping review", zap.String("review_id", row.ID), zap.Error(err))
			continue
		}
		reviews = append(reviews, normalized)
	}
	return reviews, nil
}

// ToRow converts a stored review and its joins into the normalization input.
func ToRow(r entity.ProductReview) review.Row {
	row := review.Row{
		ID:               r.ID,
		Rating:           review.RatingOf(r.Rating),
		Comment:          r.Comment,
		VerifiedPurchase: r.VerifiedPurchase,
	}
	if !r.CreatedAt.IsZero() {
		row.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	// bun leaves an empty struct behind when a belongs-to join matched nothing.
	if r.Profile != nil && r.Profile.ID != "" {
		row.Profile = &review.ProfileJoin{FullName: r.Profile.FullName}
	}
	if r.Product != nil && r.Product.ID != 0 {
		row.Product = &review.ProductJoin{
			Name:  nonEmpty(r.Product.Name),
			Model: nonEmpty(r.Product.Model),
		}
	}
	return row
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) readCache(ctx context.Context, key string, dst any) bool {
	err := cache.GetJSON(ctx, s.cache, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *Service) writeCache(ctx context.Context, key string, value any) {
	if err := cache.SetJSON(ctx, s.cache, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
