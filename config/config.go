// Package config lê a configuração do contactd do ambiente (com .env opcional).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"portfolio-contact/logging"
	"portfolio-contact/middleware/ratelimit/domain"
	"portfolio-contact/tracing"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"

	ProviderLog    = "log"
	ProviderResend = "resend"
)

type Config struct {
	Environment  string `env:"ENV" envDefault:"development"`
	ListenAddr   string `env:"LISTEN_ADDR" envDefault:":8080"`
	ContactPath  string `env:"CONTACT_PATH" envDefault:"/api/contact"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"65536"`

	Log   logging.Config
	Trace tracing.Config

	RateEnabled            bool          `env:"RATE_ENABLED" envDefault:"true"`
	RateMax                int           `env:"RATE_MAX" envDefault:"3"`
	RateWindow             time.Duration `env:"RATE_WINDOW" envDefault:"1h"`
	RateBackend            string        `env:"RATE_BACKEND" envDefault:"memory"`
	RateKeyHeader          string        `env:"RATE_KEY_HEADER" envDefault:"X-Forwarded-For"`
	RateFallbackRemoteAddr bool          `env:"RATE_FALLBACK_REMOTE_ADDR" envDefault:"false"`
	RateRetryAfter         time.Duration `env:"RATE_RETRY_AFTER" envDefault:"0s"`
	RateHeaders            bool          `env:"RATE_HEADERS" envDefault:"false"`
	RateCleanupEvery       time.Duration `env:"RATE_CLEANUP_EVERY" envDefault:"10m"`

	RateStatsBackend   string        `env:"RATE_STATS_BACKEND" envDefault:"memory"`
	RateStatsPrefix    string        `env:"RATE_STATS_PREFIX" envDefault:"contact:ratelimit:stats"`
	RateStatsTTL       time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	RateStatsTrackKeys bool          `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`

	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"contact:ratelimit"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"100"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`

	MailProvider    string        `env:"MAIL_PROVIDER" envDefault:"log"`
	ResendAPIKey    string        `env:"RESEND_API_KEY"`
	ResendEndpoint  string        `env:"RESEND_ENDPOINT" envDefault:"https://api.resend.com/emails"`
	MailFrom        string        `env:"MAIL_FROM" envDefault:"portfolio@localhost"`
	MailTo          string        `env:"MAIL_TO" envDefault:"owner@localhost"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"10s"`
	DispatchRPS     float64       `env:"DISPATCH_RPS" envDefault:"2"`
	DispatchBurst   int           `env:"DISPATCH_BURST" envDefault:"1"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load carrega os arquivos .env informados (padrão ".env"; ausentes são
// ignorados), lê o ambiente e valida. Variáveis já exportadas têm precedência
// sobre o arquivo.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(strings.HasPrefix(c.ContactPath, "/"), "CONTACT_PATH must start with /")
	check(c.MaxBodyBytes > 0, "MAX_BODY_BYTES must be > 0")
	check(c.RateMax > 0, "RATE_MAX must be > 0")
	check(c.RateWindow > 0, "RATE_WINDOW must be > 0")
	check(c.RateRetryAfter >= 0, "RATE_RETRY_AFTER must be >= 0")
	check(c.RateBackend == BackendMemory || c.RateBackend == BackendRedis,
		"RATE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.RateBackend)
	check(c.RateStatsBackend == BackendMemory || c.RateStatsBackend == BackendRedis || c.RateStatsBackend == BackendNone,
		"RATE_STATS_BACKEND must be memory, redis or none, got %q", c.RateStatsBackend)
	check(!c.NeedsRedis() || strings.TrimSpace(c.RedisURL) != "",
		"REDIS_URL is required when RATE_BACKEND or RATE_STATS_BACKEND is redis")
	check(c.ConcurrencyMax >= 0, "CONCURRENCY_MAX must be >= 0")
	check(c.MailProvider == ProviderLog || c.MailProvider == ProviderResend,
		"MAIL_PROVIDER must be %q or %q, got %q", ProviderLog, ProviderResend, c.MailProvider)
	check(c.MailProvider != ProviderResend || c.ResendAPIKey != "",
		"RESEND_API_KEY is required when MAIL_PROVIDER=resend")
	check(c.DispatchTimeout > 0, "DISPATCH_TIMEOUT must be > 0")
	check(c.DispatchRPS >= 0, "DISPATCH_RPS must be >= 0")
	check(c.DispatchRPS == 0 || c.DispatchBurst > 0, "DISPATCH_BURST must be > 0")
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Trace.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// NeedsRedis indica se algum backend configurado usa Redis.
func (c *Config) NeedsRedis() bool {
	return c.RateBackend == BackendRedis || c.RateStatsBackend == BackendRedis
}

func (c *Config) RatePolicy() domain.Policy {
	return domain.Policy{Max: c.RateMax, Window: c.RateWindow}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
