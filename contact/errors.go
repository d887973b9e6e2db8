package contact

import "errors"

// Erros do pipeline de submissão. O handler HTTP traduz cada um num status.
var (
	// ErrUnsupportedMediaType: Content-Type não é JSON (415).
	ErrUnsupportedMediaType = errors.New("content-type must be application/json")
	// ErrMalformedBody: corpo não decodifica na estrutura esperada (400).
	ErrMalformedBody = errors.New("malformed request body")
	// ErrDispatch: falha ao entregar a mensagem já validada (500).
	// O erro do provedor vem embrulhado e só aparece no log.
	ErrDispatch = errors.New("dispatch failed")
)

// ValidationError nomeia o primeiro campo inválido (422).
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return "Invalid field: " + e.Field }
