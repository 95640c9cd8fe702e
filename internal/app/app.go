package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"dsstool/internal/config"
	apierrors "dsstool/internal/errors"
	"dsstool/internal/infrastructure"
	"dsstool/internal/middleware"
	"dsstool/internal/operations"
	"dsstool/internal/services"
	"dsstool/internal/templates"
	transport "dsstool/internal/transport/http"
	ws "dsstool/internal/websocket"
)

// sweepInterval is how often idle rate limiter buckets are dropped.
const sweepInterval = 10 * time.Minute

// BuildTime is set at link time with -ldflags "-X dsstool/internal/app.BuildTime=...".
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
	Registry      *prom.Registry
	WebSocketHub  *ws.Hub
	RunService    *services.RunService
	HealthService *services.HealthService
	RateLimiter   *middleware.RateLimiter

	errors   *apierrors.ErrorHandler
	tracer   *operations.RunTracer
	listener net.Listener
	serveErr chan error

	stopOnce sync.Once
	stopErr  error
}

// NewApplication wires every component. A nil cfg is loaded from the
// environment and config file; a nil logger is built from cfg.Logging.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if logger == nil {
		l, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("templates_dir", cfg.Templates.Dir),
		slog.String("scratch_root", cfg.ScratchRoot()))

	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	providers, err := infrastructure.InitializeOTel(otelConfig(cfg, registry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Registry:      registry,
		errors:        apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.setupRouter()
	a.createServer()

	return a, nil
}

func otelConfig(cfg *config.Config, registry *prom.Registry) *infrastructure.OTelConfig {
	oc := infrastructure.DefaultOTelConfig()
	oc.ServiceVersion = config.AppVersion
	oc.EnableMetrics = cfg.Metrics.Enabled
	oc.TraceExporter = cfg.Metrics.TraceExporter
	oc.EnableTracing = cfg.Metrics.TraceExporter != "" && cfg.Metrics.TraceExporter != "none"
	oc.Registry = registry
	return oc
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	tracer, err := operations.NewRunTracer(a.OTelProviders)
	if err != nil {
		return err
	}
	a.tracer = tracer

	manager, err := operations.NewManager(tracer, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create run manager: %w", err)
	}

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Logger, wsMetrics)

	store := templates.NewStore(a.Config.Templates.Dir, a.Logger)
	a.RunService = services.NewRunService(a.Config, manager, store, a.WebSocketHub, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, BuildTime, store, a.Config.ScratchRoot(), a.WebSocketHub, a.Logger)

	if a.Config.RateLimit.Enabled {
		a.RateLimiter = middleware.NewRateLimiter(a.Config.RateLimit, a.errors, a.Logger)
	}
	return nil
}

// setupRouter builds the chi router and its middleware chain.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apierrors.NewErrorMiddleware(a.errors, a.Logger).Handler)
	r.Use(middleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.tracer.Metrics(), a.Logger).Handler)
	r.Use(middleware.DefaultSecureHeaders().Handler)

	r.NotFound(a.errors.NotFound)
	r.MethodNotAllowed(a.errors.MethodNotAllowed)

	transport.NewHealthHandler(a.HealthService, a.Logger).Routes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, a.Config.Metrics.Endpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Method(http.MethodGet, "/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Logger))

	runs := transport.NewRunHandler(a.RunService, a.errors, a.Config.Server.MaxUploadBytes, a.Logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if a.RateLimiter != nil {
			r.Use(a.RateLimiter.Handler)
		}
		r.Mount("/runs", runs.Routes())
		r.Get("/templates", runs.GetTemplates)
		r.Get("/stream/stats", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, a.WebSocketHub.Stats())
		})
	})

	a.Router = r
}

// createServer sizes the write timeout so a run that uses its whole budget
// can still deliver its response.
func (a *Application) createServer() {
	writeTimeout := a.Config.Server.WriteTimeout
	if budget := a.Config.Server.RunTimeout + 10*time.Second; budget > writeTimeout {
		writeTimeout = budget
	}
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Start binds the listener and serves in the background.
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln
	a.WebSocketHub.Start()

	a.serveErr = make(chan error, 1)
	go func() {
		defer close(a.serveErr)
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", ln.Addr().String()),
		slog.Bool("metrics", a.OTelProviders.PrometheusHTTP != nil),
		slog.Bool("rate_limit", a.RateLimiter != nil))
	return nil
}

// Addr is the bound listen address once started.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the application. It is safe to call more than once.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.Logger.InfoContext(ctx, "shutting down application")

		shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
		a.WebSocketHub.Stop()
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		a.Logger.InfoContext(ctx, "application shutdown complete")

		if err := infrastructure.CloseLogFile(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
		a.stopErr = errors.Join(errs...)
	})
	return a.stopErr
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// server fails, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err, ok := <-a.serveErr:
			if ok {
				return err
			}
			// Stopped from elsewhere; end the sweeper too
			return http.ErrServerClosed
		case <-gctx.Done():
			return nil
		}
	})
	if a.RateLimiter != nil {
		g.Go(func() error {
			a.RateLimiter.Run(gctx, sweepInterval)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if ctx.Err() != nil {
		a.Logger.Info("shutdown requested")
	}
	return errors.Join(err, a.Stop(context.Background()))
}
