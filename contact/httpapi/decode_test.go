package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-contact/contact"
)

func TestDecodeSubmission(t *testing.T) {
	sub, err := decodeSubmission(strings.NewReader(`  {"name":"a","email":"b","subject":"c","message":"d"}  `))
	require.NoError(t, err)
	assert.Equal(t, contact.Submission{Name: "a", Email: "b", Subject: "c", Message: "d"}, sub)

	_, err = decodeSubmission(strings.NewReader(`{"name":"a"}{"name":"b"}`))
	assert.ErrorIs(t, err, contact.ErrMalformedBody)

	_, err = decodeSubmission(strings.NewReader(`{"message":["x"]}`))
	assert.ErrorIs(t, err, contact.ErrMalformedBody)
}

func TestCheckContentType(t *testing.T) {
	cases := map[string]bool{
		"application/json":                true,
		"Application/JSON":                true,
		"application/json; charset=UTF-8": true,
		"application/json;":               true,
		"application/json; charset":       true,
		"text/json":                       false,
		"text/plain":                      false,
		"application/json-patch+json":     false,
		"text/plain; x=application/json":  false,
		"/json":                           false,
		"":                                false,
	}
	for ct, ok := range cases {
		r := httptest.NewRequest("POST", "/", nil)
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		err := checkContentType(r)
		if ok {
			assert.NoError(t, err, ct)
		} else {
			assert.ErrorIs(t, err, contact.ErrUnsupportedMediaType, ct)
		}
	}
}
