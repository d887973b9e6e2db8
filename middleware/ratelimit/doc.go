// Package ratelimit fornece adapters HTTP (net/http) para o rate limit por origem
// e o limite de concorrência do endpoint de contato.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela em memória, janela no Redis, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no endpoint:
//
//  1. Extrai a chave do cliente (primeiro IP do X-Forwarded-For, senão "unknown")
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 com Retry-After (rate limit) ou 503 (concorrência)
//  4. Se permitido, chama o próximo handler (validação e envio da mensagem)
//
// Variáveis de ambiente do contactd (pacote config) controlam o comportamento,
// como RATE_MAX, RATE_WINDOW, RATE_BACKEND e CONCURRENCY_MAX.
package ratelimit
