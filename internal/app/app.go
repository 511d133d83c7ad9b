// Package app assembles the toolbox service: repository, dispatcher with its
// behaviors, HTTP API and the optional tracing and event forwarding.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/fxsml/dispatch"
	"github.com/fxsml/dispatch/cloudevents"
	"github.com/fxsml/dispatch/internal/httpapi"
	"github.com/fxsml/dispatch/internal/telemetry"
	"github.com/fxsml/dispatch/internal/toolbox"
	"github.com/fxsml/dispatch/internal/toolbox/redisstore"
	"github.com/fxsml/dispatch/internal/toolbox/sqlitestore"
	"github.com/fxsml/dispatch/middleware"
	"golang.org/x/sync/errgroup"
)

// ServiceName identifies the service in traces and events.
const ServiceName = "toolbox"

// App is an assembled toolbox service.
type App struct {
	cfg        Config
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher
	handler    http.Handler
	closers    []func(context.Context) error
}

// NewLogger creates the JSON logger used by the service.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// New assembles the service described by cfg. Close releases the resources
// acquired here.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	tp, shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: ServiceName,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	schemas := middleware.NewSchemas()
	if err := toolbox.RegisterSchemas(schemas); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	reg := dispatch.NewRegistry()
	err = errors.Join(
		dispatch.RegisterOpenBehavior(reg, middleware.Recover[any, any]()),
		dispatch.RegisterOpenBehavior(reg, middleware.Trace[any, any](tp.Tracer(ServiceName))),
		dispatch.RegisterOpenBehavior(reg, middleware.LogErrors[any, any](middleware.LogConfig{Logger: logger})),
		a.registerLimits(reg),
		dispatch.RegisterOpenBehavior(reg, middleware.Performance[any, any](middleware.PerformanceConfig{
			Threshold: cfg.SlowThreshold,
			Logger:    logger,
		})),
		dispatch.RegisterOpenBehavior(reg, middleware.Measure[any, any](a.distributeMetrics())),
		dispatch.RegisterOpenBehavior(reg, middleware.Validate[any, any](schemas)),
		dispatch.RegisterBehavior[toolbox.ListTools, []toolbox.Tool](reg,
			middleware.Retry[toolbox.ListTools, []toolbox.Tool](a.retryConfig())),
		toolbox.Register(reg, repo, logger),
	)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	if cfg.EventsTarget != "" {
		sender, err := cehttp.New(cehttp.WithTarget(cfg.EventsTarget))
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("create event sender: %w", err)
		}
		fwd := cloudevents.NewForwarder(sender, cloudevents.ForwarderConfig{
			Source: cfg.EventsSource,
			Logger: logger,
		})
		if err := dispatch.RegisterOpenNotificationHandler(reg, fwd); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	a.dispatcher = dispatch.New(reg, dispatch.Config{Logger: logger})
	a.handler = httpapi.NewHandler(a.dispatcher, httpapi.Config{
		Schemas: schemas,
		Logger:  logger,
	})
	return a, nil
}

func (a *App) openRepository(ctx context.Context) (toolbox.Repository, error) {
	switch a.cfg.Store {
	case StoreRedis:
		store, client, err := redisstore.Open(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return store, nil
	case StoreSQLite:
		store, err := sqlitestore.Open(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		return store, nil
	default:
		return toolbox.NewMemoryRepository(), nil
	}
}

// distributeMetrics moves metric logging off the request path. The
// distributor is drained when the App is closed.
func (a *App) distributeMetrics() middleware.MetricsCollector {
	ctx, cancel := context.WithCancel(context.Background())
	d := middleware.DistributeMetrics(ctx, a.cfg.MetricsBuffer, middleware.NewMetricsLogger(a.logger))
	a.closers = append(a.closers, func(context.Context) error {
		cancel()
		<-d.Done()
		if n := d.Dropped(); n > 0 {
			a.logger.Warn("Metrics dropped", "count", n)
		}
		return nil
	})
	return d.Collect
}

func (a *App) registerLimits(reg *dispatch.Registry) error {
	var errs []error
	if a.cfg.RateLimit > 0 {
		limiter := middleware.NewLeakyBucket(a.cfg.RateLimit, a.cfg.RateBurst)
		errs = append(errs, dispatch.RegisterOpenBehavior(reg, middleware.RateLimit[any, any](limiter)))
	}
	if a.cfg.MaxConcurrent > 0 {
		errs = append(errs, dispatch.RegisterOpenBehavior(reg, middleware.ConcurrencyLimit[any, any](a.cfg.MaxConcurrent)))
	}
	return errors.Join(errs...)
}

func (a *App) retryConfig() middleware.RetryConfig {
	delay := a.cfg.RetryDelay
	return middleware.RetryConfig{
		ShouldRetry: middleware.ShouldNotRetry(context.Canceled, context.DeadlineExceeded),
		Backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = delay
			b.MaxInterval = 10 * delay
			return b
		},
		MaxAttempts: a.cfg.RetryAttempts,
	}
}

// Dispatcher returns the dispatcher of the service.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP on the configured address until ctx is done, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Server listening", "addr", a.cfg.ListenAddr, "store", a.cfg.Store)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		a.logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the repository and flushes pending traces.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
