package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Additional-Code/storefront/internal/presentation/http/response"
)

func adminEcho(token string) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", AdminAuth(token))
	g.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header map[string]string
		status int
	}{
		{name: "no token configured", token: "", status: http.StatusOK},
		{name: "missing", token: "s3cret", status: http.StatusUnauthorized},
		{name: "wrong bearer", token: "s3cret", header: map[string]string{"Authorization": "Bearer nope"}, status: http.StatusUnauthorized},
		{name: "bearer", token: "s3cret", header: map[string]string{"Authorization": "Bearer s3cret"}, status: http.StatusOK},
		{name: "lowercase scheme", token: "s3cret", header: map[string]string{"Authorization": "bearer s3cret"}, status: http.StatusOK},
		{name: "header", token: "s3cret", header: map[string]string{AdminTokenHeader: "s3cret"}, status: http.StatusOK},
		{name: "wrong header", token: "s3cret", header: map[string]string{AdminTokenHeader: "nope"}, status: http.StatusUnauthorized},
		{name: "basic scheme falls through to header", token: "s3cret", header: map[string]string{"Authorization": "Basic abc", AdminTokenHeader: "s3cret"}, status: http.StatusOK},
		{name: "wrong bearer right header", token: "s3cret", header: map[string]string{"Authorization": "Bearer nope", AdminTokenHeader: "s3cret"}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := adminEcho(tt.token)
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"kind":"unauthorized"`)
			}
		})
	}
}

func TestErrorDetailSetsVerbosity(t *testing.T) {
	e := echo.New()
	e.Use(ErrorDetail(true))
	var seen any
	e.GET("/x", func(c echo.Context) error {
		seen = c.Get(response.VerboseErrorsKey)
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, true, seen)
}

func TestMetricsPassesErrorsToHandler(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
