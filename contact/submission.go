package contact

// Submission é o corpo aceito pelo endpoint: exatamente quatro campos string.
// Chaves JSON desconhecidas são descartadas na decodificação.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Field names, na ordem em que a validação do servidor avalia.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// Limites de tamanho (em caracteres, após trim).
const (
	MaxNameLen    = 100
	MaxEmailLen   = 254
	MaxSubjectLen = 200
	MinMessageLen = 20
	MaxMessageLen = 2000
)
