package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"portfolio-contact/mail"
	"portfolio-contact/metrics"
)

type recordingDispatcher struct {
	msgs []mail.Message
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg mail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.msgs = append(d.msgs, msg)
	return nil
}

func TestService_Submit_DispatchesSanitizedMessage(t *testing.T) {
	d := &recordingDispatcher{}
	svc := NewService(d, WithEnvelope("portfolio@example.dev", "owner@example.dev"))

	receipt, err := svc.Submit(context.Background(), Submission{
		Name:    ` Jane "JS" Smith `,
		Email:   " Jane@Company.com ",
		Subject: "Tom & Jerry",
		Message: "I'd like to discuss a security review.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.ID)
	require.Len(t, d.msgs, 1)

	msg := d.msgs[0]
	assert.Equal(t, receipt.ID, msg.ID)
	assert.Equal(t, "portfolio@example.dev", msg.From)
	assert.Equal(t, "owner@example.dev", msg.To)
	assert.Equal(t, "jane@company.com", msg.ReplyTo)
	assert.Equal(t, "[Portfolio] Tom &amp; Jerry", msg.Subject)
	assert.Equal(t, "From: Jane &quot;JS&quot; Smith <jane@company.com>\n\nI&#x27;d like to discuss a security review.", msg.Text)
}

func TestService_Submit_InvalidSubmissionHasNoSideEffects(t *testing.T) {
	d := &recordingDispatcher{}
	svc := NewService(d)

	_, err := svc.Submit(context.Background(), Submission{
		Name:    strings.Repeat("A", 101),
		Email:   "a@b.com",
		Subject: "hi",
		Message: strings.Repeat("x", 25),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, FieldName, vErr.Field)
	assert.Empty(t, d.msgs)
}

func TestService_Submit_DispatchFailureIsWrappedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	providerErr := errors.New("smtp 554 relay denied for secret-host.internal")
	svc := NewService(&recordingDispatcher{err: providerErr},
		WithLogger(zap.New(core)),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDispatch)
	assert.ErrorIs(t, err, providerErr)

	entries := logs.FilterMessage("contact dispatch failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "relay denied")
}

func TestService_Submit_DispatchTimeoutIsFailure(t *testing.T) {
	slow := mail.DispatcherFunc(func(ctx context.Context, _ mail.Message) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	svc := NewService(slow, WithDispatchTimeout(20*time.Millisecond))

	_, err := svc.Submit(context.Background(), validSubmission())
	assert.ErrorIs(t, err, ErrDispatch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newSpanRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (string, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString(), true
		}
	}
	return "", false
}

func TestService_Submit_SpanCarriesSubmissionID(t *testing.T) {
	rec, tp := newSpanRecorder()
	svc := NewService(&recordingDispatcher{}, WithTracerProvider(tp))

	receipt, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "contact.Submit", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	id, ok := spanAttr(spans[0], "contact.submission_id")
	require.True(t, ok)
	assert.Equal(t, receipt.ID, id)
}

func TestService_Submit_SpanMarksDispatchFailure(t *testing.T) {
	rec, tp := newSpanRecorder()
	providerErr := errors.New("provider unavailable")
	svc := NewService(&recordingDispatcher{err: providerErr}, WithTracerProvider(tp))

	_, err := svc.Submit(context.Background(), validSubmission())
	require.ErrorIs(t, err, ErrDispatch)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "dispatch failed", spans[0].Status().Description)

	_, ok := spanAttr(spans[0], "contact.submission_id")
	assert.True(t, ok)

	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestService_Submit_SpanNamesInvalidField(t *testing.T) {
	rec, tp := newSpanRecorder()
	svc := NewService(&recordingDispatcher{}, WithTracerProvider(tp))

	sub := validSubmission()
	sub.Email = "nope"
	_, err := svc.Submit(context.Background(), sub)
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	field, _ := spanAttr(spans[0], "contact.invalid_field")
	assert.Equal(t, FieldEmail, field)
	_, ok := spanAttr(spans[0], "contact.submission_id")
	assert.False(t, ok)
}
