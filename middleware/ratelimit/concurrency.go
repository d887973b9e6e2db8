package ratelimit

import (
	"errors"
	"net/http"
	"time"

	"portfolio-contact/middleware/ratelimit/application"
	"portfolio-contact/middleware/ratelimit/domain"
	"portfolio-contact/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

// DefaultBusyMessage é o corpo de erro devolvido quando não há vaga.
const DefaultBusyMessage = "Server is busy. Please try again later."

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *zap.Logger
}

// ConcurrencyMiddleware limita quantas requests ficam em voo ao mesmo tempo.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNoSlot) {
					opts.Logger.Warn("concurrency limit reached", zap.Int("max", opts.Max))
				}
				writeError(w, opts.RejectStatus, DefaultBusyMessage)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
