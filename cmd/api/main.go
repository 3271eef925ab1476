package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-margin/internal/config"
	"github.com/noah-isme/toko-margin/internal/health"
	"github.com/noah-isme/toko-margin/internal/money"
	"github.com/noah-isme/toko-margin/internal/obs"
	"github.com/noah-isme/toko-margin/internal/pricing"
	"github.com/noah-isme/toko-margin/internal/ratelimit"
	"github.com/noah-isme/toko-margin/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	tracingEnabled := cfg.Obs.EnableTracing
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "toko-margin",
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}
	cfg.Obs.EnableTracing = tracingEnabled

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           newRouter(cfg, logger, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Int32("decimal_precision", cfg.Pricing.DecimalPrecision).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

// newRouter assembles the HTTP surface. Metrics are registered on reg and served from it.
func newRouter(cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) http.Handler {
	engine := pricing.NewEngine(money.NewContext(cfg.Pricing.DecimalPrecision))

	var (
		httpMetrics    *obs.HTTPMetrics
		pricingMetrics *obs.PricingMetrics
	)
	if cfg.Obs.EnablePrometheus {
		buckets := obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets)
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, buckets, reg)
		pricingMetrics = obs.NewPricingMetrics(cfg.Obs.MetricsNamespace, reg)
	}

	svc := &pricing.Service{
		Engine:  engine,
		Logger:  logger.With().Str("component", "pricing").Logger(),
		Metrics: pricingMetrics,
	}
	pricingHandler := pricing.NewHandler(svc)

	limiter := ratelimit.Handler{
		Limiter: ratelimit.NewMemoryLimiter("ratelimit:"),
		Key:     ratelimit.KeyByClientIP,
		Rate:    ratelimit.PerWindow(cfg.HTTP.RateLimitMax, cfg.HTTP.RateLimitWindow),
		OnError: func(err error) {
			logger.Error().Err(err).Msg("rate limiter")
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.HTTP.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.Obs.EnableTracing {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.CORS(cfg.AllowedOriginsCSV()))
	r.Use(security.Headers{Enable: cfg.HTTP.SecureHeadersEnable, EnableHSTS: cfg.HTTP.EnableHSTS, NoStore: true}.Middleware)

	if cfg.Obs.EnablePrometheus {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	healthHandler := health.Handler{
		Checks:  map[string]health.Checker{"pricing": pricing.SelfCheck{Engine: engine}},
		Timeout: cfg.Pricing.ReadyTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1/pricing", func(p chi.Router) {
		p.Use(security.BodyLimit{Max: cfg.HTTP.BodyLimitBytes}.Middleware)
		p.Use(limiter.Middleware)
		pricingHandler.Routes(p)
	})

	return r
}
