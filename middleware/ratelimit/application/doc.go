// Package application contém os casos de uso (regras de aplicação) para o rate
// limit do endpoint de contato e para o limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key) retorna uma Decision (allow/deny + retry-after).
package application
