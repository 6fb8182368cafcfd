package http

import (
	"crypto/subtle"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/Additional-Code/storefront/internal/observability"
	"github.com/Additional-Code/storefront/internal/presentation/http/response"
	"github.com/Additional-Code/storefront/pkg/errorbank"
)

// AdminTokenHeader is accepted as an alternative to a bearer token.
const AdminTokenHeader = "X-Admin-Token"

// Metrics records request counts and latency per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			observability.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			observability.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
			return nil
		}
	}
}

// ErrorDetail marks every request with the configured error verbosity.
func ErrorDetail(verbose bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			response.SetVerbose(c, verbose)
			return next(c)
		}
	}
}

// AdminAuth requires the admin token as a bearer token or in X-Admin-Token.
// An empty token disables the check.
func AdminAuth(token string) echo.MiddlewareFunc {
	return echomiddleware.KeyAuthWithConfig(echomiddleware.KeyAuthConfig{
		Skipper: func(echo.Context) bool {
			return token == ""
		},
		KeyLookup:  "header:" + echo.HeaderAuthorization + ",header:" + AdminTokenHeader,
		AuthScheme: "Bearer",
		Validator: func(key string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(_ error, c echo.Context) error {
			return response.New(c).WithError(errorbank.Unauthorized("admin token is missing or invalid")).Build()
		},
	})
}
