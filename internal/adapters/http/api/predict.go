package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
)

// PredictHandler handles POST /predict.
type PredictHandler struct {
	deps         Dependencies
	validator    *jsonschema.Schema
	maxBodyBytes int64
	logger       logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, validator *jsonschema.Schema, maxBodyBytes int64, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, validator: validator, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandlePredict decodes a questionnaire response and returns its prediction.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"

	if r.ContentLength > h.maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", NewKind(op, ErrPayloadTooLarge))
		return
	}

	raw, err := h.decode(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "validation_error", WrapKind(op, ErrValidation, err))
		return
	}

	res, err := h.deps.Predict(r.Context(), raw)
	if err != nil {
		h.writePredictError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads the body as generic JSON, validates it against the request
// schema and extracts the answer strings. Unknown properties are ignored.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request) (questionnaire.RawInput, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	inst, err := jsonschema.UnmarshalJSON(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := h.validator.Validate(inst); err != nil {
		return nil, err
	}

	obj, _ := inst.(map[string]any)
	ids := h.deps.Schema().FieldIDs()
	raw := make(questionnaire.RawInput, len(ids))
	for _, id := range ids {
		if s, ok := obj[id].(string); ok {
			raw[id] = s
		}
	}
	return raw, nil
}

func (h *PredictHandler) writePredictError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := app.Kind(err)
	switch kind {
	case app.KindInvalidAnswer:
		resp := errorResponse{Code: kind, Message: err.Error()}
		var invalid *questionnaire.InvalidAnswerError
		if errors.As(err, &invalid) {
			resp.Field = invalid.Field
			value := invalid.Value
			resp.Value = &value
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	case app.KindModelUnavailable:
		writeError(w, http.StatusServiceUnavailable, kind, err)
	case app.KindInference, app.KindUnknownLabel:
		writeError(w, http.StatusInternalServerError, kind, err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
	h.logger.Error(r.Context(), "prediction failed",
		logger.String("kind", kind),
		logger.String("request_id", RequestIDFromContext(r.Context())),
		logger.Error(Wrap(op, err)),
	)
}
