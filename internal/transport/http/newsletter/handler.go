package newsletter

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/storefront/internal/dto"
	"github.com/Additional-Code/storefront/internal/presentation/http/response"
	service "github.com/Additional-Code/storefront/internal/service/newsletter"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/storefront/transport/http/newsletter")

// Handler exposes newsletter endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a newsletter Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/newsletter")
	g.POST("/subscribe", h.subscribe)
	g.POST("/unsubscribe", h.unsubscribe)
}

func (h *Handler) subscribe(c echo.Context) error {
	b := response.New(c)

	var payload dto.NewsletterRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "newsletter.subscribe")
	defer span.End()

	result, err := h.svc.Subscribe(ctx, payload.Email)
	if err != nil {
		return b.WithError(err).Build()
	}

	switch result {
	case service.Created:
		return b.WithStatus(http.StatusCreated).WithData(dto.NewsletterResponse{
			Message: "Successfully subscribed to the newsletter",
			Success: true,
		}).Build()
	case service.Reactivated:
		return b.WithData(dto.NewsletterResponse{
			Message:     "Your subscription has been reactivated",
			Reactivated: true,
		}).Build()
	default:
		return b.WithData(dto.NewsletterResponse{
			Message:           "This email is already subscribed",
			AlreadySubscribed: true,
		}).Build()
	}
}

func (h *Handler) unsubscribe(c echo.Context) error {
	b := response.New(c)

	var payload dto.NewsletterRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "newsletter.unsubscribe")
	defer span.End()

	if err := h.svc.Unsubscribe(ctx, payload.Email); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewsletterResponse{
		Message:      "You have been unsubscribed",
		Unsubscribed: true,
	}).Build()
}
