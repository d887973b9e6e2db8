package application

import (
	"context"
	"fmt"
	"time"

	"portfolio-contact/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Limiter domain.Limiter
	Policy  domain.Policy
	// RetryAfter sobrescreve a dica de Retry-After. Se 0, usa a janela da Policy.
	RetryAfter time.Duration
}

// Decide consulta o limiter para a chave.
//
// Sem limiter configurado tudo é admitido. Se o limiter falhar, a decisão
// devolvida é "admitir" (fail-open) junto com o erro, para o chamador logar.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Limiter == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if key == "" {
		key = domain.UnknownKey
	}

	dec, err := s.Limiter.Admit(ctx, key)
	if err != nil {
		return domain.Decision{Allowed: true}, fmt.Errorf("admit %q: %w", key, err)
	}
	if dec.Allowed {
		return dec, nil
	}

	dec.RetryAfter = s.retryAfter()
	return dec, nil
}

func (s Service) retryAfter() time.Duration {
	if s.RetryAfter > 0 {
		return s.RetryAfter
	}
	if s.Policy.Window > 0 {
		return s.Policy.Window
	}
	return domain.DefaultPolicy.Window
}
