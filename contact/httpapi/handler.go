package httpapi

import (
	"errors"
	"net/http"

	"portfolio-contact/contact"
	"portfolio-contact/metrics"
	"portfolio-contact/middleware/ratelimit"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes limita o corpo aceito pelo endpoint.
const DefaultMaxBodyBytes int64 = 64 << 10

// Handler cobre as etapas depois do rate limit: decodificar, validar e enviar.
// Método e Content-Type são checados pelo router (NewRouter).
type Handler struct {
	svc          *contact.Service
	maxBodyBytes int64
	metrics      *metrics.Contact
	logger       *zap.Logger
}

func NewHandler(svc *contact.Service, opts Options) *Handler {
	opts = opts.withDefaults()
	return &Handler{
		svc:          svc,
		maxBodyBytes: opts.MaxBodyBytes,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("source", string(ratelimit.KeyFromContext(r.Context()))),
	)

	sub, err := decodeSubmission(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.metrics.Outcome(metrics.OutcomeMalformed)
		logger.Debug("contact body rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	receipt, err := h.svc.Submit(r.Context(), sub)
	var vErr *contact.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.metrics.Outcome(metrics.OutcomeInvalid)
		h.metrics.InvalidField(vErr.Field)
		logger.Debug("contact submission invalid", zap.String("field", vErr.Field))
		writeError(w, http.StatusUnprocessableEntity, vErr.Error())
	case err != nil:
		h.metrics.Outcome(metrics.OutcomeDispatchFailed)
		logger.Warn("contact submission not delivered", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgDispatchFailed)
	default:
		h.metrics.Outcome(metrics.OutcomeAccepted)
		logger.Debug("contact submission accepted", zap.String("id", receipt.ID))
		writeJSON(w, http.StatusOK, successBody{Success: true})
	}
}
