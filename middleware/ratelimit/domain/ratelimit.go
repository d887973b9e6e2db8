package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Key identifica a origem de uma tentativa (normalmente o IP do cliente).
type Key string

// UnknownKey é o bucket compartilhado por todas as origens que não puderam
// ser determinadas (ex.: sem X-Forwarded-For).
const UnknownKey Key = "unknown"

// Policy descreve a janela deslizante: no máximo Max tentativas admitidas
// dentro dos últimos Window.
type Policy struct {
	Max    int
	Window time.Duration
}

// DefaultPolicy: 3 tentativas por hora por origem.
var DefaultPolicy = Policy{Max: 3, Window: time.Hour}

// Limiter decide se uma tentativa da origem `key` é admitida agora.
//
// Uma tentativa rejeitada NÃO é registrada. A implementação pode ser em
// memória (uma instância) ou compartilhada (Redis) para um limite global.
type Limiter interface {
	Admit(ctx context.Context, key Key) (Decision, error)
}

type Decision struct {
	Allowed bool
	// Limit e Remaining refletem a janela após a decisão.
	Limit     int
	Remaining int
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
