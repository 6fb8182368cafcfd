package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/Additional-Code/storefront/internal/transport/http/catalog"
	newslettertransport "github.com/Additional-Code/storefront/internal/transport/http/newsletter"
	ordertransport "github.com/Additional-Code/storefront/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	newslettertransport.Module,
	catalogtransport.Module,
)
