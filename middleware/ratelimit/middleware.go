package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"portfolio-contact/middleware/ratelimit/application"
	"portfolio-contact/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

// DefaultKeyHeader é o header de encaminhamento usado para achar o IP do cliente.
const DefaultKeyHeader = "X-Forwarded-For"

// DefaultRejectMessage é o corpo de erro devolvido com 429.
const DefaultRejectMessage = "Too many requests. Please try again later."

type KeyFunc func(r *http.Request) string

type Options struct {
	Limiter domain.Limiter
	// Policy só alimenta a dica de Retry-After; quem aplica é o Limiter.
	Policy domain.Policy
	Stats  domain.StatsStore
	KeyFn  KeyFunc
	// KeyHeader: header de encaminhamento (padrão X-Forwarded-For).
	KeyHeader string
	// FallbackRemoteAddr usa o IP da conexão quando o header não vem.
	// Desligado, todas essas origens caem no bucket "unknown".
	FallbackRemoteAddr  bool
	RejectStatus        int
	RejectMessage       string
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              *zap.Logger
}

type ctxKey struct{}

// KeyFromContext devolve a chave de rate limit calculada para a request.
func KeyFromContext(ctx context.Context) domain.Key {
	if k, ok := ctx.Value(ctxKey{}).(domain.Key); ok {
		return k
	}
	return domain.UnknownKey
}

func DefaultKeyFunc(keyHeader string, fallbackRemoteAddr bool) KeyFunc {
	if keyHeader == "" {
		keyHeader = DefaultKeyHeader
	}
	return func(r *http.Request) string {
		// pega o primeiro IP da lista (cliente original)
		if v := r.Header.Get(keyHeader); v != "" {
			first, _, _ := strings.Cut(v, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}

		if fallbackRemoteAddr {
			host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
			if err == nil && host != "" {
				return host
			}
			if r.RemoteAddr != "" {
				return r.RemoteAddr
			}
		}
		return string(domain.UnknownKey)
	}
}

// Middleware aplica o rate limit por origem antes do handler.
//
// Quando bloqueia, responde RejectStatus com Retry-After e um corpo JSON
// {"error": RejectMessage}; o próximo handler não é chamado (nem o body é lido).
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RejectMessage == "" {
		opts.RejectMessage = DefaultRejectMessage
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.FallbackRemoteAddr)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	svc := application.Service{
		Limiter:    opts.Limiter,
		Policy:     opts.Policy,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := domain.Key(opts.KeyFn(r))
			ctx := r.Context()

			dec, err := svc.Decide(ctx, key)
			if err != nil {
				opts.Logger.Error("rate limiter unavailable, admitting request",
					zap.String("key", string(key)), zap.Error(err))
			}

			if opts.Stats != nil {
				if err := opts.Stats.Record(ctx, domain.StatsEvent{
					Key:     key,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}); err != nil {
					opts.Logger.Warn("rate limit stats record failed", zap.Error(err))
				}
			}

			if opts.AddRateLimitHeaders && dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
			}

			if !dec.Allowed {
				opts.Logger.Debug("rate limit exceeded", zap.String("key", string(key)))
				w.Header().Set("Retry-After", formatSeconds(dec.RetryAfter))
				writeError(w, opts.RejectStatus, opts.RejectMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKey{}, key)))
		})
	}
}
