package catalog

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/storefront/internal/dto"
	"github.com/Additional-Code/storefront/internal/presentation/http/response"
	service "github.com/Additional-Code/storefront/internal/service/catalog"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/storefront/transport/http/catalog")

// Handler exposes the read-only catalog over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/products")
	g.GET("", h.list)
	g.GET("/:slug", h.get)
	g.GET("/:slug/reviews", h.reviews)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list")
	defer span.End()

	products, err := h.svc.ListProducts(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.ProductListResponse{Products: products}).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	slug := c.Param("slug")
	ctx, span := httpTracer.Start(c.Request().Context(), "products.get", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	product, err := h.svc.GetProduct(ctx, slug)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(product).Build()
}

func (h *Handler) reviews(c echo.Context) error {
	b := response.New(c)

	slug := c.Param("slug")
	ctx, span := httpTracer.Start(c.Request().Context(), "products.reviews", trace.WithAttributes(attribute.String("product.slug", slug)))
	defer span.End()

	reviews, err := h.svc.ListReviews(ctx, slug)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.ReviewListResponse{Reviews: reviews}).Build()
}
