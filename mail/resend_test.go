package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{
		ID:      "sub-1",
		From:    "portfolio@example.dev",
		To:      "owner@example.dev",
		ReplyTo: "jane@company.com",
		Subject: "[Portfolio] Hello",
		Text:    "From: Jane <jane@company.com>\n\nhello there",
	}
}

func TestResendDispatcher_PostsEmail(t *testing.T) {
	var got resendEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "sub-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	d := NewResendDispatcher("re_test", WithResendEndpoint(srv.URL))
	require.NoError(t, d.Dispatch(context.Background(), testMessage()))

	assert.Equal(t, "portfolio@example.dev", got.From)
	assert.Equal(t, []string{"owner@example.dev"}, got.To)
	assert.Equal(t, "[Portfolio] Hello", got.Subject)
	assert.Equal(t, "jane@company.com", got.ReplyTo)
}

func TestResendDispatcher_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := NewResendDispatcher("bad", WithResendEndpoint(srv.URL))
	err := d.Dispatch(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestResendDispatcher_RequiresConfiguration(t *testing.T) {
	d := NewResendDispatcher("")
	assert.ErrorIs(t, d.Dispatch(context.Background(), testMessage()), ErrNotConfigured)
}

func TestResendDispatcher_HonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	d := NewResendDispatcher("re_test", WithResendEndpoint(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Dispatch(ctx, testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
