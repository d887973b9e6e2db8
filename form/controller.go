// Package form é o lado cliente do formulário de contato: guarda os quatro
// campos, valida localmente com as mesmas regras do servidor e envia o JSON
// para o endpoint, expondo o estado idle, loading, success ou error.
//
// A validação local é só conveniência; o servidor valida de novo.
package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio-contact/contact"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

var (
	// ErrInFlight: Submit chamado enquanto outro envio ainda está em andamento.
	ErrInFlight = errors.New("form: submission already in flight")
	// ErrUnknownField: Set com nome de campo fora dos quatro aceitos.
	ErrUnknownField = errors.New("form: unknown field")
)

// InvalidError carrega as mensagens por campo da validação local.
type InvalidError struct {
	Fields map[string]string
}

func (e *InvalidError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "form: invalid fields: " + strings.Join(names, ", ")
}

// StatusError: o endpoint respondeu fora de 2xx.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("form: server responded %d", e.Code)
	}
	return fmt.Sprintf("form: server responded %d: %s", e.Code, e.Message)
}

type Option func(*Controller)

func WithHTTPClient(c *http.Client) Option {
	return func(ctl *Controller) { ctl.client = c }
}

// WithHeader adiciona um header fixo a cada envio.
func WithHeader(key, value string) Option {
	return func(ctl *Controller) { ctl.header.Set(key, value) }
}

// Controller mantém o estado de uma instância do formulário.
// É seguro para uso concorrente.
type Controller struct {
	endpoint  string
	client    *http.Client
	header    http.Header
	validator *contact.Validator

	mu     sync.Mutex
	values contact.Submission
	errors map[string]string
	status Status
}

func New(endpoint string, opts ...Option) *Controller {
	c := &Controller{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 15 * time.Second},
		header:    make(http.Header),
		validator: contact.NewValidator(),
		errors:    make(map[string]string),
		status:    StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set troca o valor de um campo e apaga o erro que ele tinha.
func (c *Controller) Set(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case contact.FieldName:
		c.values.Name = value
	case contact.FieldEmail:
		c.values.Email = value
	case contact.FieldSubject:
		c.values.Subject = value
	case contact.FieldMessage:
		c.values.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	delete(c.errors, field)
	return nil
}

func (c *Controller) Values() contact.Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submit valida localmente e, se tudo estiver ok, envia.
//
// Com erro de validação o status não muda e nada é enviado. Durante o envio o
// status fica loading e novas chamadas devolvem ErrInFlight. Resposta 2xx leva
// a success e limpa os campos; qualquer outra resposta ou falha de transporte
// leva a error, mantendo os valores digitados.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusLoading {
		c.mu.Unlock()
		return ErrInFlight
	}
	errs := c.validator.FieldErrors(c.values)
	c.errors = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		return &InvalidError{Fields: errs}
	}
	c.status = StatusLoading
	payload := Prepare(c.values)
	c.mu.Unlock()

	err := c.post(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusError
		return err
	}
	c.status = StatusSuccess
	c.values = contact.Submission{}
	return nil
}

// Prepare produz o corpo enviado: campos sem espaços nas pontas, email em
// minúsculas e cada campo cortado no limite máximo.
func Prepare(s contact.Submission) contact.Submission {
	return contact.Submission{
		Name:    truncate(contact.TrimSpace(s.Name), contact.MaxNameLen),
		Email:   truncate(strings.ToLower(contact.TrimSpace(s.Email)), contact.MaxEmailLen),
		Subject: truncate(contact.TrimSpace(s.Subject), contact.MaxSubjectLen),
		Message: truncate(contact.TrimSpace(s.Message), contact.MaxMessageLen),
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func (c *Controller) post(ctx context.Context, payload contact.Submission) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
