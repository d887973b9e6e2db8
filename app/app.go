// Package app monta o serviço completo a partir da configuração: limiter,
// estatísticas, envio de email, métricas e router HTTP. É compartilhado pelo
// contactd (servidor HTTP) e pelo contact-lambda.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"portfolio-contact/config"
	"portfolio-contact/contact"
	"portfolio-contact/contact/httpapi"
	"portfolio-contact/mail"
	"portfolio-contact/metrics"
	"portfolio-contact/middleware/ratelimit"
	"portfolio-contact/middleware/ratelimit/domain"
	"portfolio-contact/middleware/ratelimit/infra"
	"portfolio-contact/tracing"
)

type App struct {
	Handler  http.Handler
	Service  *contact.Service
	Registry *prometheus.Registry
	// MemoryStats é nil quando RATE_STATS_BACKEND não é memory.
	MemoryStats *infra.MemoryStatsStore

	memLimiter *infra.MemoryWindowLimiter
	rdb        *redis.Client
	tracer     *sdktrace.TracerProvider
	ownTracer  bool
	logger     *zap.Logger
}

// Option troca peças montadas a partir da config (testes).
type Option func(*buildOptions)

type buildOptions struct {
	dispatcher mail.Dispatcher
	rdb        *redis.Client
	tracer     *sdktrace.TracerProvider
}

// WithDispatcher usa o dispatcher informado no lugar do MAIL_PROVIDER.
func WithDispatcher(d mail.Dispatcher) Option {
	return func(o *buildOptions) { o.dispatcher = d }
}

// WithRedisClient usa um cliente já conectado no lugar de REDIS_URL.
func WithRedisClient(rdb *redis.Client) Option {
	return func(o *buildOptions) { o.rdb = rdb }
}

// WithTracerProvider usa o provider informado no lugar de OTEL_TRACES_EXPORTER.
// Close não o encerra: quem passou é dono dele.
func WithTracerProvider(tp *sdktrace.TracerProvider) Option {
	return func(o *buildOptions) { o.tracer = tp }
}

func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{logger: logger, rdb: bo.rdb, tracer: bo.tracer}

	if a.tracer == nil {
		tp, err := tracing.New(cfg.Trace)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.tracer, a.ownTracer = tp, true
	}

	if a.rdb == nil && cfg.NeedsRedis() {
		rdb, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.rdb = rdb
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	contactMetrics := metrics.New(a.Registry)

	dispatcher := bo.dispatcher
	if dispatcher == nil {
		dispatcher = a.newDispatcher(cfg)
	}

	a.Service = contact.NewService(dispatcher,
		contact.WithEnvelope(cfg.MailFrom, cfg.MailTo),
		contact.WithDispatchTimeout(cfg.DispatchTimeout),
		contact.WithLogger(logger.Named("contact")),
		contact.WithMetrics(contactMetrics),
		contact.WithTracerProvider(a.tracer),
	)

	routerOpts := httpapi.Options{
		Path:         cfg.ContactPath,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.ConcurrencyMax,
			AcquireTimeout: cfg.ConcurrencyTimeout,
		},
		Metrics:     contactMetrics,
		MetricsPath: cfg.MetricsPath,
		Logger:      logger.Named("http"),
	}
	if cfg.MetricsEnabled {
		routerOpts.MetricsHandler = promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry})
	}
	if a.rdb != nil {
		rdb := a.rdb
		routerOpts.Health = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if cfg.RateEnabled {
		routerOpts.RateLimit = &ratelimit.Options{
			Limiter:             a.newLimiter(cfg),
			Policy:              cfg.RatePolicy(),
			Stats:               a.newStats(cfg),
			KeyHeader:           cfg.RateKeyHeader,
			FallbackRemoteAddr:  cfg.RateFallbackRemoteAddr,
			RetryAfter:          cfg.RateRetryAfter,
			AddRateLimitHeaders: cfg.RateHeaders,
			Logger:              logger.Named("ratelimit"),
		}
	}

	a.Handler = httpapi.NewRouter(a.Service, routerOpts)
	return a, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return rdb, nil
}

func (a *App) newLimiter(cfg *config.Config) domain.Limiter {
	if cfg.RateBackend == config.BackendRedis {
		return infra.NewRedisWindowLimiter(a.rdb, cfg.RatePolicy(), infra.WithRedisPrefix(cfg.RedisPrefix))
	}
	a.memLimiter = infra.NewMemoryWindowLimiter(cfg.RatePolicy(), infra.WithCleanupEvery(cfg.RateCleanupEvery))
	return a.memLimiter
}

func (a *App) newStats(cfg *config.Config) domain.StatsStore {
	var stores infra.MultiStats
	switch cfg.RateStatsBackend {
	case config.BackendMemory:
		a.MemoryStats = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.RateStatsTrackKeys))
		stores = append(stores, a.MemoryStats)
	case config.BackendRedis:
		stores = append(stores, infra.NewRedisStatsStore(a.rdb,
			infra.WithStatsPrefix(cfg.RateStatsPrefix),
			infra.WithStatsTTL(cfg.RateStatsTTL),
			infra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		))
	}
	if cfg.MetricsEnabled {
		stores = append(stores, infra.NewPrometheusStatsStore(a.Registry))
	}
	if len(stores) == 0 {
		return nil
	}
	return stores
}

func (a *App) newDispatcher(cfg *config.Config) mail.Dispatcher {
	var d mail.Dispatcher = mail.LogDispatcher{Logger: a.logger.Named("mail")}
	if cfg.MailProvider == config.ProviderResend {
		d = mail.NewResendDispatcher(cfg.ResendAPIKey, mail.WithResendEndpoint(cfg.ResendEndpoint))
	}
	return mail.NewThrottled(d, cfg.DispatchRPS, cfg.DispatchBurst)
}

// Start inicia as tarefas de fundo (janitor do limiter em memória) até ctx acabar.
func (a *App) Start(ctx context.Context) {
	if a.memLimiter != nil {
		a.memLimiter.StartJanitor(ctx)
	}
}

// LogStats registra os totais do store de estatísticas em memória, se houver.
func (a *App) LogStats() {
	if a.MemoryStats == nil {
		return
	}
	total := a.MemoryStats.Total()
	a.logger.Info("rate limit totals",
		zap.Int64("allowed", total.Allowed),
		zap.Int64("denied", total.Denied),
		zap.Int("routes", len(a.MemoryStats.ByRoute())),
	)
}

// Close encerra o provider de tracing (descarregando spans pendentes) e fecha
// o Redis.
func (a *App) Close() error {
	var errs []error
	if a.ownTracer {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
