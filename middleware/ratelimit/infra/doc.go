// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryWindowLimiter: janela deslizante por chave em memória (uma instância)
//   - RedisWindowLimiter: a mesma janela num sorted set do Redis, via script Lua
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: estatísticas das decisões
package infra
