package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-contact/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admitScript aplica a janela deslizante de forma atômica num sorted set
// (score = timestamp em ms). Retorna {admitido(0|1), tentativas na janela}.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= max then
  return {0, count}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1}
`)

// RedisWindowLimiter implementa domain.Limiter sobre Redis, compartilhado
// entre todas as instâncias do endpoint (limite global de verdade).
type RedisWindowLimiter struct {
	rdb    redis.Scripter
	prefix string
	policy domain.Policy
	now    func() time.Time
}

type RedisWindowOption func(*RedisWindowLimiter)

func WithRedisPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowLimiter) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithRedisClock(now func() time.Time) RedisWindowOption {
	return func(s *RedisWindowLimiter) { s.now = now }
}

func NewRedisWindowLimiter(rdb redis.Scripter, policy domain.Policy, opts ...RedisWindowOption) *RedisWindowLimiter {
	s := &RedisWindowLimiter{
		rdb:    rdb,
		prefix: "contact:ratelimit",
		policy: normalizePolicy(policy),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisWindowLimiter) Policy() domain.Policy { return s.policy }

// Admit implementa domain.Limiter.
func (s *RedisWindowLimiter) Admit(ctx context.Context, key domain.Key) (domain.Decision, error) {
	now := s.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := admitScript.Run(ctx, s.rdb,
		[]string{s.redisKey(key)},
		now, s.policy.Window.Milliseconds(), s.policy.Max, member,
	).Int64Slice()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("redis window script: %w", err)
	}
	if len(res) != 2 {
		return domain.Decision{}, fmt.Errorf("redis window script: unexpected reply %v", res)
	}

	count := int(res[1])
	if res[0] == 0 {
		return domain.Decision{Allowed: false, Limit: s.policy.Max}, nil
	}
	return domain.Decision{
		Allowed:   true,
		Limit:     s.policy.Max,
		Remaining: s.policy.Max - count,
	}, nil
}

func (s *RedisWindowLimiter) redisKey(key domain.Key) string {
	return s.prefix + ":" + string(key)
}
