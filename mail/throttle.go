package mail

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled respeita a cota de envio do provedor com um token bucket.
// A espera obedece ao ctx: estourar o prazo vira erro de entrega.
type Throttled struct {
	next    Dispatcher
	limiter *rate.Limiter
}

func NewThrottled(next Dispatcher, rps float64, burst int) *Throttled {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Dispatch(ctx context.Context, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send quota: %w", err)
	}
	return t.next.Dispatch(ctx, msg)
}
