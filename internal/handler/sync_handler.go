package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/internal/repository"
	"github.com/formhub/backend/internal/service"
	"github.com/formhub/backend/pkg/wordpress"
)

// SyncHandler exposes the sync engine: manual triggers, contact form
// resolution and the live entries read-through.
type SyncHandler struct {
	syncService service.SyncService
}

// NewSyncHandler creates a SyncHandler with the given service.
func NewSyncHandler(syncService service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncSite handles POST /api/sync/{id}. Lock contention is reported in the
// result status, not as an HTTP error.
func (h *SyncHandler) SyncSite(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.syncService.SyncSite(r.Context(), siteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "site_not_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "sync_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type syncAllResponse struct {
	Results []model.SyncResult `json:"results"`
}

// SyncAll handles POST /api/sync.
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.syncService.SyncAllSites(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sync_failed", "")
		return
	}
	if results == nil {
		results = []model.SyncResult{}
	}
	writeJSON(w, http.StatusOK, syncAllResponse{Results: results})
}

// ResolveForm handles GET /api/sites/{id}/contact-form.
func (h *SyncHandler) ResolveForm(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r)
	if !ok {
		return
	}

	form, err := h.syncService.ResolveContactForm(r.Context(), siteID)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Entries handles GET /api/sites/{id}/entries, the live read-through.
// Supports query params: page, per_page.
func (h *SyncHandler) Entries(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 15)
	if perPage > 100 {
		perPage = 100
	}

	projection, err := h.syncService.ListContactFormEntries(r.Context(), siteID, page, perPage)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

// writeResolveError maps resolution/remote errors onto HTTP statuses.
func (h *SyncHandler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "site_not_found", "")
	case errors.Is(err, service.ErrNoContactForm):
		writeError(w, http.StatusNotFound, "no_contact_form", "No contact form found")
	case errors.Is(err, wordpress.ErrAuthentication):
		writeError(w, http.StatusBadGateway, "remote_auth_failed", wordpress.ErrorMessage(err))
	default:
		writeError(w, http.StatusBadGateway, "remote_error", wordpress.ErrorMessage(err))
	}
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_site_id", "")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
