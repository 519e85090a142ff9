package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/enhealth/internal/app"
	"github.com/okian/enhealth/internal/domain/features"
	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/logger"
)

// PredictHandler serves the POST /api/{condition} endpoints.
type PredictHandler struct {
	deps   Predictor
	logger logger.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps Predictor, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, logger: l}
}

// HandlePredict returns the handler for one condition. A body that is absent,
// malformed, or not a JSON object is treated as an empty payload so the
// response names the missing fields.
func (h *PredictHandler) HandlePredict(condition types.Condition) http.HandlerFunc {
	op := "api.predict_" + string(condition)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := decodePayload(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge.Error())
				return
			}
			h.logger.Debug(ctx, "unreadable payload, treating as empty",
				logger.String("condition", string(condition)),
				logger.Error(WrapKind(op, ErrBadRequest, err)),
			)
			payload = map[string]any{}
		}

		result, err := h.deps.Predict(ctx, condition, payload)
		if err != nil {
			var verr *features.ValidationError
			switch {
			case errors.As(err, &verr):
				writeError(w, http.StatusBadRequest, verr.Message)
			case errors.Is(err, service.ErrUnknownCondition):
				writeError(w, http.StatusNotFound, err.Error())
			default:
				h.logger.Error(ctx, "prediction failed",
					logger.String("condition", string(condition)),
					logger.Error(WrapKind(op, ErrInternal, err)),
				)
				writeError(w, http.StatusInternalServerError, ErrInternal.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, types.Response{Condition: condition, Result: result})
	}
}

// decodePayload reads a JSON object. Numbers are kept as json.Number so
// integers survive unchanged.
func decodePayload(body io.Reader) (map[string]any, error) {
	if body == nil || body == http.NoBody {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("payload has trailing data")
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("payload is not a JSON object")
	}
	return payload, nil
}
