package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/metrics"
)

// ConditionLister reports the loaded models.
type ConditionLister interface {
	Conditions() []types.Condition
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	models  ConditionLister
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(models ConditionLister) *HealthHandler {
	return &HealthHandler{
		models:  models,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Models []types.Condition `json:"models"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	models := h.models.Conditions()
	if len(models) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Models: []types.Condition{}})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Models: models})
}

// HandleMetrics serves the custom Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
