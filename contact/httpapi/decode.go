package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"portfolio-contact/contact"
)

// checkContentType aceita qualquer Content-Type cujo media type seja
// application/json, com ou sem parâmetros (charset etc.). Parâmetros
// malformados são ignorados; o que decide é o media type.
// Fora disso devolve contact.ErrUnsupportedMediaType.
func checkContentType(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return fmt.Errorf("%w: missing content-type", contact.ErrUnsupportedMediaType)
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return fmt.Errorf("%w: %w", contact.ErrUnsupportedMediaType, err)
	}
	if mediaType != "application/json" {
		return fmt.Errorf("%w: got %q", contact.ErrUnsupportedMediaType, mediaType)
	}
	return nil
}

// decodeSubmission lê exatamente um objeto JSON com os quatro campos string.
// null, arrays, tipos errados, corpo vazio e dados sobrando depois do objeto
// viram contact.ErrMalformedBody.
func decodeSubmission(body io.Reader) (contact.Submission, error) {
	var sub contact.Submission

	dec := json.NewDecoder(body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return sub, fmt.Errorf("%w: %w", contact.ErrMalformedBody, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return sub, fmt.Errorf("%w: body is not a JSON object", contact.ErrMalformedBody)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return sub, fmt.Errorf("%w: unexpected data after JSON object", contact.ErrMalformedBody)
	}
	if err := json.Unmarshal(raw, &sub); err != nil {
		return sub, fmt.Errorf("%w: %w", contact.ErrMalformedBody, err)
	}
	return sub, nil
}
