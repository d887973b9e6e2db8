// Package httpapi expõe o contact.Service como endpoint HTTP.
//
// A ordem das checagens é fixa: método, Content-Type, rate limit, decodificação
// do corpo, validação, envio. Uma etapa rejeitada encerra a request sem tocar
// nas seguintes; em especial o limiter nunca é consultado para métodos ou
// Content-Type errados e o corpo nunca é lido antes do limiter admitir.
package httpapi
