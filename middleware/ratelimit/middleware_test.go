package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-contact/middleware/ratelimit/domain"
	"portfolio-contact/middleware/ratelimit/infra"
)

func newRequest(xff string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "http://example/api/contact", strings.NewReader("{}"))
	r.RemoteAddr = "10.0.0.1:1234"
	if xff != "" {
		r.Header.Set("X-Forwarded-For", xff)
	}
	return r
}

func TestMiddleware_AllowsThreeThenRejectsSameKey(t *testing.T) {
	policy := domain.Policy{Max: 3, Window: time.Hour}
	stats := infra.NewMemoryStatsStore()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := KeyFromContext(r.Context()); got != "1.2.3.4" {
			t.Errorf("expected key in context, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	h := Middleware(Options{
		Limiter:             infra.NewMemoryWindowLimiter(policy),
		Policy:              policy,
		Stats:               stats,
		AddRateLimitHeaders: true,
	})(next)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest("1.2.3.4"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Remaining"); got != formatInt(2-i) {
			t.Fatalf("request %d: expected X-RateLimit-Remaining=%d, got %q", i+1, 2-i, got)
		}
	}

	// 4ª dentro da hora deve bloquear
	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "3600" {
		t.Fatalf("expected Retry-After=3600, got %q", got)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != DefaultRejectMessage {
		t.Fatalf("unexpected error body: %v", body)
	}

	if calls != 3 {
		t.Fatalf("expected next handler to be called 3 times, got %d", calls)
	}
	if got := stats.Total(); got.Allowed != 3 || got.Denied != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestMiddleware_DifferentForwardedAddressesHaveOwnBuckets(t *testing.T) {
	policy := domain.Policy{Max: 1, Window: time.Hour}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{Limiter: infra.NewMemoryWindowLimiter(policy), Policy: policy})(next)

	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", ip, w.Code)
		}
	}
}

func TestMiddleware_MissingHeaderSharesUnknownBucket(t *testing.T) {
	policy := domain.Policy{Max: 1, Window: time.Hour}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{Limiter: infra.NewMemoryWindowLimiter(policy), Policy: policy})(next)

	r1 := newRequest("")
	r1.RemoteAddr = "10.0.0.1:1111"
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}

	// outro peer, mas sem header: mesmo bucket "unknown"
	r2 := newRequest("")
	r2.RemoteAddr = "10.0.0.2:2222"
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for shared unknown bucket, got %d", w2.Code)
	}
}

type erroringLimiter struct{}

func (erroringLimiter) Admit(context.Context, domain.Key) (domain.Decision, error) {
	return domain.Decision{}, errors.New("redis down")
}

func TestMiddleware_FailsOpenWhenLimiterErrors(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{Limiter: erroringLimiter{}})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusOK || calls != 1 {
		t.Fatalf("expected request admitted on limiter error, got %d (calls=%d)", w.Code, calls)
	}
}

func TestMiddleware_RetryAfterRoundsUp(t *testing.T) {
	policy := domain.Policy{Max: 1, Window: time.Hour}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{
		Limiter:    infra.NewMemoryWindowLimiter(policy),
		Policy:     policy,
		RetryAfter: 2500 * time.Millisecond,
	})(next)

	h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4"))

	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, newRequest("1.2.3.4"))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if got := strings.TrimSpace(w2.Header().Get("Retry-After")); got != "3" {
		// ceil(2.5s) == 3
		t.Fatalf("expected Retry-After=3, got %q", got)
	}
}
