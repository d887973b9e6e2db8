// Package contact implementa o pipeline de submissão do formulário de contato:
// regras de validação (compartilhadas com o formulário do cliente), sanitização
// e envio para o provedor de email.
//
// O transporte HTTP fica em contact/httpapi; o rate limit em middleware/ratelimit.
package contact
