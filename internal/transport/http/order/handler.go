package order

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/storefront/internal/dto"
	"github.com/Additional-Code/storefront/internal/presentation/http/response"
	httpserver "github.com/Additional-Code/storefront/internal/server/http"
	service "github.com/Additional-Code/storefront/internal/service/order"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/storefront/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes the customer lookup on e and the operator routes on admin.
func Register(e *echo.Echo, admin *httpserver.AdminGroup, h *Handler) {
	e.GET("/order-details", h.details)

	g := admin.Group.Group("/orders")
	g.GET("/:orderNumberOrId", h.adminGet)
	g.PATCH("/:orderNumberOrId", h.adminUpdate)
}

func (h *Handler) details(c echo.Context) error {
	b := response.New(c)

	id := c.QueryParam("orderId")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.details", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	res, err := h.svc.Get(ctx, id, service.LookupByID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.OrderDetailsResponse{
		OK:    true,
		Order: dto.NewOrderSummary(res.Order),
		Items: dto.NewOrderItems(res.Items),
	}).Build()
}

func (h *Handler) adminGet(c echo.Context) error {
	b := response.New(c)

	key := c.Param("orderNumberOrId")
	mode := resolveMode(key)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.adminGet", trace.WithAttributes(
		attribute.String("order.key", key),
		attribute.String("order.lookup_mode", mode.String()),
	))
	defer span.End()

	res, err := h.svc.Get(ctx, key, mode)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.AdminOrderResponse{
		Order: *res.Order,
		Items: dto.NewOrderItems(res.Items),
	}).Build()
}

func (h *Handler) adminUpdate(c echo.Context) error {
	b := response.New(c)

	var payload dto.UpdateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	key := c.Param("orderNumberOrId")
	mode := resolveMode(key)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.adminUpdate", trace.WithAttributes(
		attribute.String("order.key", key),
		attribute.String("order.status", payload.Status),
	))
	defer span.End()

	updated, err := h.svc.UpdateFulfillment(ctx, key, mode, service.UpdateInput{
		Status:         payload.Status,
		TrackingNumber: payload.TrackingNumber,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(updated).Build()
}

// resolveMode treats UUID-shaped keys as internal identifiers and anything
// else as an order number.
func resolveMode(key string) service.LookupMode {
	if _, err := uuid.Parse(key); err == nil {
		return service.LookupByID
	}
	return service.LookupByNumber
}
