package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"portfolio-contact/contact"
	"portfolio-contact/metrics"
	"portfolio-contact/middleware/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const DefaultPath = "/api/contact"

// HealthFunc checa dependências externas (ex.: ping no Redis).
type HealthFunc func(ctx context.Context) error

type Options struct {
	Path         string
	MaxBodyBytes int64
	// RateLimit nil desliga o limiter.
	RateLimit   *ratelimit.Options
	Concurrency ratelimit.ConcurrencyOptions
	Metrics     *metrics.Contact
	// MetricsHandler é montado em MetricsPath quando não for nil.
	MetricsHandler http.Handler
	MetricsPath    string
	Health         HealthFunc
	Logger         *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.MetricsPath == "" {
		o.MetricsPath = "/metrics"
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// NewRouter monta o endpoint de contato e as rotas operacionais.
//
// Middlewares do endpoint, nesta ordem: RequireJSON (415), rate limit (429),
// concorrência (503). O 405 sai do MethodNotAllowed do chi, antes de todos eles.
func NewRouter(svc *contact.Service, opts Options) http.Handler {
	opts = opts.withDefaults()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == opts.Path {
			w.Header().Set("Allow", http.MethodPost)
			opts.Metrics.Outcome(metrics.OutcomeMethodNotAllowed)
		}
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})

	chain := []func(http.Handler) http.Handler{RequireJSON(opts.Metrics)}
	if opts.RateLimit != nil {
		rl := *opts.RateLimit
		if rl.Logger == nil {
			rl.Logger = opts.Logger
		}
		chain = append(chain, ratelimit.Middleware(rl))
	}
	if opts.Concurrency.Logger == nil {
		opts.Concurrency.Logger = opts.Logger
	}
	chain = append(chain, ratelimit.ConcurrencyMiddleware(opts.Concurrency))

	r.With(chain...).Post(opts.Path, NewHandler(svc, opts).ServeHTTP)

	r.Get("/healthz", healthHandler(opts.Health))
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, opts.MetricsPath, opts.MetricsHandler)
	}
	return r
}

// RequireJSON rejeita com 415 qualquer request cujo Content-Type não seja JSON.
func RequireJSON(m *metrics.Contact) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := checkContentType(r); errors.Is(err, contact.ErrUnsupportedMediaType) {
				m.Outcome(metrics.OutcomeUnsupportedType)
				writeError(w, http.StatusUnsupportedMediaType, msgUnsupportedType)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func healthHandler(check HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
