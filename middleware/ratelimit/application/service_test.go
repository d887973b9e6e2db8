package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-contact/middleware/ratelimit/domain"
)

type fakeLimiter struct {
	dec  domain.Decision
	err  error
	keys []domain.Key
}

func (f *fakeLimiter) Admit(_ context.Context, key domain.Key) (domain.Decision, error) {
	f.keys = append(f.keys, key)
	return f.dec, f.err
}

func TestService_Decide_AllowsWhenNoLimiter(t *testing.T) {
	svc := Service{}
	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_AllowsWhenLimiterAllows(t *testing.T) {
	lim := &fakeLimiter{dec: domain.Decision{Allowed: true, Limit: 3, Remaining: 2}}
	svc := Service{Limiter: lim, Policy: domain.DefaultPolicy}
	dec, err := svc.Decide(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed || dec.Remaining != 2 {
		t.Fatalf("expected allowed with remaining=2, got %+v", dec)
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected no RetryAfter when allowed, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithWindowAsRetryAfter(t *testing.T) {
	lim := &fakeLimiter{dec: domain.Decision{Allowed: false, Limit: 3}}
	svc := Service{Limiter: lim, Policy: domain.Policy{Max: 3, Window: time.Hour}}
	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != time.Hour {
		t.Fatalf("expected RetryAfter=1h, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithConfiguredRetryAfter(t *testing.T) {
	lim := &fakeLimiter{dec: domain.Decision{Allowed: false}}
	svc := Service{Limiter: lim, Policy: domain.DefaultPolicy, RetryAfter: 90 * time.Second}
	dec, _ := svc.Decide(context.Background(), "k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 90*time.Second {
		t.Fatalf("expected RetryAfter=90s, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_FailsOpenOnLimiterError(t *testing.T) {
	boom := errors.New("redis down")
	lim := &fakeLimiter{err: boom}
	svc := Service{Limiter: lim}
	dec, err := svc.Decide(context.Background(), "k")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped limiter error, got %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected fail-open decision")
	}
}

func TestService_Decide_EmptyKeyUsesUnknownBucket(t *testing.T) {
	lim := &fakeLimiter{dec: domain.Decision{Allowed: true}}
	svc := Service{Limiter: lim}
	_, _ = svc.Decide(context.Background(), "")
	if len(lim.keys) != 1 || lim.keys[0] != domain.UnknownKey {
		t.Fatalf("expected key %q, got %v", domain.UnknownKey, lim.keys)
	}
}
