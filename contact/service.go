package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-contact/mail"
	"portfolio-contact/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultDispatchTimeout = 10 * time.Second
	subjectPrefix          = "[Portfolio] "
)

const tracerName = "portfolio-contact/contact"

// Receipt identifica uma submissão aceita (só para log/correlação).
type Receipt struct {
	ID string
}

// Service executa validação, sanitização e envio de uma submissão.
// Transporte e rate limit ficam com quem chama (handler HTTP / serverless).
type Service struct {
	validator  *Validator
	dispatcher mail.Dispatcher
	from       string
	to         string
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *metrics.Contact
	tracer     trace.Tracer
}

type ServiceOption func(*Service)

func WithEnvelope(from, to string) ServiceOption {
	return func(s *Service) {
		s.from = from
		s.to = to
	}
}

func WithDispatchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Contact) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithTracerProvider define de onde vêm os spans de Submit. Sem ela vale o
// provider global do otel.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

func NewService(dispatcher mail.Dispatcher, opts ...ServiceOption) *Service {
	s := &Service{
		validator:  NewValidator(),
		dispatcher: dispatcher,
		timeout:    DefaultDispatchTimeout,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator expõe as regras usadas pelo serviço.
func (s *Service) Validator() *Validator { return s.validator }

// Submit valida (primeiro campo inválido → *ValidationError), sanitiza e envia.
//
// Falha de envio (inclusive timeout) volta como ErrDispatch embrulhando a causa;
// o detalhe vai para o log e nunca deve chegar ao cliente.
func (s *Service) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "contact.Submit", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if err := s.validator.Validate(sub); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		span.SetAttributes(attribute.String("contact.invalid_field", invalidField(err)))
		return Receipt{}, err
	}

	id := uuid.NewString()
	clean := Sanitize(sub)
	msg := s.compose(id, clean)
	span.SetAttributes(attribute.String("contact.submission_id", id))

	dispatchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.dispatcher.Dispatch(dispatchCtx, msg)
	s.metrics.ObserveDispatch(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		s.logger.Error("contact dispatch failed", zap.String("id", id), zap.Error(err))
		return Receipt{}, fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	s.logger.Info("contact message dispatched", zap.String("id", id), zap.String("email", clean.Email))
	span.SetStatus(codes.Ok, "")
	return Receipt{ID: id}, nil
}

func invalidField(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Field
	}
	return ""
}

func (s *Service) compose(id string, clean Submission) mail.Message {
	return mail.Message{
		ID:      id,
		From:    s.from,
		To:      s.to,
		ReplyTo: clean.Email,
		Subject: subjectPrefix + clean.Subject,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", clean.Name, clean.Email, clean.Message),
	}
}
