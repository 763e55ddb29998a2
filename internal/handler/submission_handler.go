package handler

import (
	"net/http"
	"strconv"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/internal/service"
)

// SubmissionHandler exposes the locally stored submissions of a site for
// review. Listing only; lifecycle changes belong to downstream workflows.
type SubmissionHandler struct {
	submissions service.SubmissionService
}

// NewSubmissionHandler creates a SubmissionHandler with the given service.
func NewSubmissionHandler(submissions service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

type submissionListResponse struct {
	Submissions []*model.Submission `json:"submissions"`
	Total       int                 `json:"total"`
}

// List handles GET /api/sites/{id}/submissions.
// Supports query params: form_id, limit, offset.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r)
	if !ok {
		return
	}

	opts := model.SubmissionListOptions{Limit: 50}
	if v := r.URL.Query().Get("form_id"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			opts.FormID = n
		}
	}
	if n := queryInt(r, "limit", 50); n <= 100 {
		opts.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	subs, total, err := h.submissions.ListBySite(r.Context(), siteID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", "")
		return
	}
	if subs == nil {
		subs = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, submissionListResponse{Submissions: subs, Total: total})
}
