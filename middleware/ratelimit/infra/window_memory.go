package infra

import (
	"context"
	"sync"
	"time"

	"portfolio-contact/middleware/ratelimit/domain"
)

// MemoryWindowLimiter implementa domain.Limiter com janela deslizante
// (lista de timestamps por chave) em memória.
//
// Vale para uma única instância: com N réplicas o limite efetivo vira
// Max × N. Para limite global use RedisWindowLimiter.
type MemoryWindowLimiter struct {
	mu           sync.Mutex
	entries      map[domain.Key][]time.Time
	policy       domain.Policy
	now          func() time.Time
	cleanupEvery time.Duration
}

type MemoryOption func(*MemoryWindowLimiter)

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryWindowLimiter) { s.now = now }
}

func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(s *MemoryWindowLimiter) { s.cleanupEvery = d }
}

func NewMemoryWindowLimiter(policy domain.Policy, opts ...MemoryOption) *MemoryWindowLimiter {
	s := &MemoryWindowLimiter{
		entries:      make(map[domain.Key][]time.Time),
		policy:       normalizePolicy(policy),
		now:          time.Now,
		cleanupEvery: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryWindowLimiter) Policy() domain.Policy { return s.policy }

// Admit implementa domain.Limiter.
//
// Filtra os timestamps <= now-window, rejeita sem registrar se já houver Max
// tentativas na janela, senão registra now e admite. Tudo sob o mesmo lock,
// inclusive a leitura do relógio: o histórico precisa continuar ordenado.
func (s *MemoryWindowLimiter) Admit(_ context.Context, key domain.Key) (domain.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	windowStart := now.Add(-s.policy.Window)

	history := pruneBefore(s.entries[key], windowStart)
	if len(history) >= s.policy.Max {
		s.entries[key] = history
		return domain.Decision{Allowed: false, Limit: s.policy.Max}, nil
	}

	history = append(history, now)
	s.entries[key] = history
	return domain.Decision{
		Allowed:   true,
		Limit:     s.policy.Max,
		Remaining: s.policy.Max - len(history),
	}, nil
}

// Count retorna quantas tentativas da chave ainda estão dentro da janela.
func (s *MemoryWindowLimiter) Count(key domain.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	windowStart := s.now().Add(-s.policy.Window)
	return len(pruneBefore(s.entries[key], windowStart))
}

// Len retorna o número de chaves mantidas na tabela.
func (s *MemoryWindowLimiter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove chaves cujo timestamp mais recente já saiu da janela.
// Uma chave assim se comporta exatamente como uma chave ausente.
func (s *MemoryWindowLimiter) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	windowStart := s.now().Add(-s.policy.Window)

	for k, history := range s.entries {
		if len(history) == 0 || !history[len(history)-1].After(windowStart) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryWindowLimiter) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// pruneBefore descarta o prefixo de timestamps <= cutoff (a lista é ordenada).
func pruneBefore(history []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(history); i++ {
		if history[i].After(cutoff) {
			break
		}
	}
	return history[i:]
}

func normalizePolicy(p domain.Policy) domain.Policy {
	if p.Max <= 0 {
		p.Max = domain.DefaultPolicy.Max
	}
	if p.Window <= 0 {
		p.Window = domain.DefaultPolicy.Window
	}
	return p
}
