package handler

import (
	"errors"
	"net/http"

	"github.com/formhub/backend/internal/repository"
	"github.com/formhub/backend/internal/service"
)

// DiagnosticsHandler exposes the operator troubleshooting probes.
type DiagnosticsHandler struct {
	diagnostics service.DiagnosticsService
}

// NewDiagnosticsHandler creates a DiagnosticsHandler with the given service.
func NewDiagnosticsHandler(diagnostics service.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics}
}

// Run handles GET /api/diagnostics/{id}.
func (h *DiagnosticsHandler) Run(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r)
	if !ok {
		return
	}

	report, err := h.diagnostics.Run(r.Context(), siteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "site_not_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "diagnostics_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
