package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/storefront/internal/cache"
	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/logger"
	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/internal/observability"
	repositorycatalog "github.com/Additional-Code/storefront/internal/repository/catalog"
	repositorynewsletter "github.com/Additional-Code/storefront/internal/repository/newsletter"
	repositoryorder "github.com/Additional-Code/storefront/internal/repository/order"
	grpcserver "github.com/Additional-Code/storefront/internal/server/grpc"
	httpserver "github.com/Additional-Code/storefront/internal/server/http"
	servicecatalog "github.com/Additional-Code/storefront/internal/service/catalog"
	servicenewsletter "github.com/Additional-Code/storefront/internal/service/newsletter"
	serviceorder "github.com/Additional-Code/storefront/internal/service/order"
	transporthttp "github.com/Additional-Code/storefront/internal/transport/http"
	"github.com/Additional-Code/storefront/internal/worker"
	workernewsletter "github.com/Additional-Code/storefront/internal/worker/newsletter"
	workerorder "github.com/Additional-Code/storefront/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	repositorynewsletter.Module,
	repositorycatalog.Module,
	serviceorder.Module,
	servicenewsletter.Module,
	servicecatalog.Module,
)

// HTTP wires the HTTP transport and the gRPC health endpoint on top of the
// core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
	workernewsletter.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
