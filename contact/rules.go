package contact

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	// \s do RE2 só cobre ASCII; \p{Z} e U+FEFF fecham o resto do espaço Unicode.
	emailPattern = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}@]+@[^\s\p{Z}\x{FEFF}@]+\.[^\s\p{Z}\x{FEFF}@]+$`)
)

// Check é uma regra de um campo: uma tag do validator e a mensagem mostrada
// ao usuário quando ela falha. Raw aplica a tag sobre o valor sem trim.
type Check struct {
	Tag     string
	Raw     bool
	Message string
}

// FieldRule agrupa as checagens de um campo, avaliadas em ordem.
type FieldRule struct {
	Field  string
	Value  func(Submission) string
	Checks []Check
}

// Rules é a tabela única de validação, usada pelo servidor (Validate) e pelo
// formulário do cliente (FieldErrors). A ordem dos campos define qual é
// "o primeiro campo inválido".
var Rules = []FieldRule{
	{
		Field: FieldName,
		Value: func(s Submission) string { return s.Name },
		Checks: []Check{
			{Tag: "required", Message: "Name is required"},
			{Tag: maxTag(MaxNameLen), Message: "Name must be under 100 characters"},
			{Tag: "nohtml", Message: "Name must not contain HTML"},
		},
	},
	{
		Field: FieldEmail,
		Value: func(s Submission) string { return s.Email },
		Checks: []Check{
			{Tag: "required", Message: "Email is required"},
			{Tag: maxTag(MaxEmailLen), Raw: true, Message: "Email must be under 254 characters"},
			{Tag: "contactemail", Message: "Please enter a valid email address"},
		},
	},
	{
		Field: FieldSubject,
		Value: func(s Submission) string { return s.Subject },
		Checks: []Check{
			{Tag: "required", Message: "Subject is required"},
			{Tag: maxTag(MaxSubjectLen), Message: "Subject must be under 200 characters"},
		},
	},
	{
		Field: FieldMessage,
		Value: func(s Submission) string { return s.Message },
		Checks: []Check{
			{Tag: "required", Message: "Message is required"},
			{Tag: "min=" + strconv.Itoa(MinMessageLen), Message: "Message must be at least 20 characters"},
			{Tag: maxTag(MaxMessageLen), Message: "Message must be under 2000 characters"},
		},
	},
}

func maxTag(n int) string { return "max=" + strconv.Itoa(n) }

// Validator aplica Rules com go-playground/validator. É seguro para uso concorrente.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// as tags são fixas; erro aqui é bug de programação
	mustRegister(v, "nohtml", func(fl validator.FieldLevel) bool {
		return !htmlTagPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("contact: register validation " + tag + ": " + err.Error())
	}
}

// Validate é a validação autoritativa do servidor: devolve *ValidationError
// com o primeiro campo inválido (name, email, subject, message) ou nil.
// Nunca altera a entrada.
func (v *Validator) Validate(s Submission) error {
	for _, rule := range Rules {
		if _, ok := v.firstFailure(rule, s); !ok {
			return &ValidationError{Field: rule.Field}
		}
	}
	return nil
}

// FieldErrors é a validação de UX do formulário: mensagem da primeira checagem
// que falhou em cada campo. Mapa vazio quando tudo é válido.
// Não substitui Validate: o cliente não é confiável.
func (v *Validator) FieldErrors(s Submission) map[string]string {
	errs := make(map[string]string)
	for _, rule := range Rules {
		if c, ok := v.firstFailure(rule, s); !ok {
			errs[rule.Field] = c.Message
		}
	}
	return errs
}

func (v *Validator) firstFailure(rule FieldRule, s Submission) (Check, bool) {
	raw := rule.Value(s)
	trimmed := TrimSpace(raw)
	for _, c := range rule.Checks {
		val := trimmed
		if c.Raw {
			val = raw
		}
		if err := v.v.Var(val, c.Tag); err != nil {
			return c, false
		}
	}
	return Check{}, true
}
