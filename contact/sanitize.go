package contact

import (
	"strings"
	"unicode"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeHTML neutraliza & < > " ' para o texto poder ir num email HTML.
//
// Não é idempotente: EscapeHTML("&amp;") == "&amp;amp;". Aplique uma única vez.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// TrimSpace remove espaço Unicode e BOM (U+FEFF) das pontas. strings.TrimSpace
// não considera o BOM espaço, e um nome feito só dele não pode contar como preenchido.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Sanitize devolve a submissão pronta para envio: campos com trim, texto livre
// escapado e email em minúsculas (sem escape; o formato já foi validado).
// Só deve ser chamada depois de Validate e uma única vez.
func Sanitize(s Submission) Submission {
	return Submission{
		Name:    EscapeHTML(TrimSpace(s.Name)),
		Email:   strings.ToLower(TrimSpace(s.Email)),
		Subject: EscapeHTML(TrimSpace(s.Subject)),
		Message: EscapeHTML(TrimSpace(s.Message)),
	}
}
