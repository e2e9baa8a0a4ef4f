package api

import (
	"context"
	"net/http"

	"github.com/okian/diabetes-predictor/internal/domain/predictor"
)

// StatusProvider describes the currently loaded model.
type StatusProvider interface {
	Status(ctx context.Context) predictor.Status
}

// StatusHandler handles status requests.
type StatusHandler struct {
	provider StatusProvider
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(provider StatusProvider) *StatusHandler {
	return &StatusHandler{provider: provider}
}

// HandleStatus handles GET /status requests. It always answers 200; the
// body says whether a model is loaded and, if not, why.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, h.provider.Status(r.Context()))
}
