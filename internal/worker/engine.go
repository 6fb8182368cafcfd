package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/messaging"
	"github.com/Additional-Code/storefront/internal/observability"
)

var engineTracer = otel.Tracer("github.com/Additional-Code/storefront/worker")

// EventHandler processes one decoded domain event.
type EventHandler func(context.Context, messaging.Envelope) error

// HandlerRegistration binds an event type to its handler.
type HandlerRegistration struct {
	EventType string
	Handler   EventHandler
}

// Params collects dependencies via Fx.
type Params struct {
	fx.In

	Client        messaging.Client
	Logger        *zap.Logger
	Config        config.Config
	Registrations []HandlerRegistration `group:"worker.handlers"`
}

// Engine orchestrates background message consumption.
type Engine struct {
	client        messaging.Client
	logger        *zap.Logger
	cfg           config.Config
	registrations map[string]EventHandler
	cancel        context.CancelFunc
	wg            *sync.WaitGroup
}

// NewEngine constructs the worker Engine.
func NewEngine(p Params) *Engine {
	reg := make(map[string]EventHandler, len(p.Registrations))
	for _, r := range p.Registrations {
		if r.EventType == "" || r.Handler == nil {
			continue
		}
		reg[r.EventType] = r.Handler
	}

	return &Engine{
		client:        p.Client,
		logger:        p.Logger,
		cfg:           p.Config,
		registrations: reg,
	}
}

// Module wires the engine into Fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(func(lc fx.Lifecycle, engine *Engine) {
		lc.Append(fx.Hook{
			OnStart: engine.start,
			OnStop:  engine.stop,
		})
	}),
)

func (e *Engine) start(ctx context.Context) error {
	if !e.cfg.Messaging.Enabled || !e.cfg.Messaging.Workers.Enabled {
		e.logger.Info("worker engine disabled")

		return nil
	}
	if len(e.registrations) == 0 {
		e.logger.Info("worker engine has no handlers; skipping")

		return nil
	}

	concurrency := e.cfg.Messaging.Workers.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg = &sync.WaitGroup{}

	for i := 0; i < concurrency; i++ {
		workerID := i
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.consumeLoop(runCtx, workerID)
		}()
	}

	e.logger.Info("worker engine started", zap.Int("workers", concurrency), zap.String("topic", e.client.Topic()))

	return nil
}

func (e *Engine) stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	done := make(chan struct{})
	go func() {
		if e.wg != nil {
			e.wg.Wait()
		}
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		e.logger.Info("worker engine stopped")

		return nil
	}
}

func (e *Engine) consumeLoop(ctx context.Context, workerID int) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		err := e.client.Consume(ctx, func(msgCtx context.Context, msg messaging.Message) error {
			return e.dispatch(msgCtx, workerID, msg)
		})

		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		e.logger.Error("consume loop error", zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// dispatch decodes msg and routes it by event type. Undecodable messages and
// unknown types are acknowledged so they do not block the partition.
func (e *Engine) dispatch(ctx context.Context, workerID int, msg messaging.Message) error {
	env, err := messaging.DecodeEnvelope(msg)
	if err != nil {
		observability.WorkerEventsTotal.WithLabelValues("unknown", "undecodable").Inc()
		e.logger.Error("dropping undecodable message", zap.Int64("offset", msg.Offset), zap.Error(err))

		return nil
	}

	handler, ok := e.registrations[env.Type]
	if !ok {
		observability.WorkerEventsTotal.WithLabelValues(env.Type, "unhandled").Inc()
		e.logger.Warn("no handler for event type", zap.String("type", env.Type))

		return nil
	}

	ctx, span := engineTracer.Start(ctx, "worker.dispatch", trace.WithAttributes(
		attribute.String("messaging.topic", msg.Topic),
		attribute.String("event.type", env.Type),
		attribute.Int("worker.id", workerID),
	))
	defer span.End()

	e.logger.Debug("processing event", zap.String("type", env.Type), zap.Int("worker", workerID))

	if err := handler(ctx, env); err != nil {
		observability.WorkerEventsTotal.WithLabelValues(env.Type, "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		return err
	}
	observability.WorkerEventsTotal.WithLabelValues(env.Type, "processed").Inc()

	return nil
}
