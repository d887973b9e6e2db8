// Package mail entrega as mensagens do formulário de contato.
//
// O contrato é tudo-ou-nada: Dispatch devolve nil quando o provedor aceitou a
// mensagem e erro em qualquer outro caso; não existe entrega parcial.
package mail

import (
	"context"
	"errors"
)

// ErrNotConfigured indica provedor sem credenciais/endereços.
var ErrNotConfigured = errors.New("mail provider not configured")

// Message é o email já montado a partir de uma submissão sanitizada.
type Message struct {
	ID      string
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
}

// Dispatcher é o colaborador externo de entrega.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// DispatcherFunc adapta uma função a Dispatcher.
type DispatcherFunc func(ctx context.Context, msg Message) error

func (f DispatcherFunc) Dispatch(ctx context.Context, msg Message) error { return f(ctx, msg) }
