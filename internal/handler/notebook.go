package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"opennotebook/internal/auth"
	"opennotebook/internal/domain/models"
	"opennotebook/internal/httputil"
	"opennotebook/internal/service"
)

// NotebookHandler handles notebook HTTP requests. It derives the
// ownership scope from the authenticated request and leaves every
// business rule to the service.
type NotebookHandler struct {
	service *service.NotebookService
	logger  *slog.Logger
}

// NewNotebookHandler creates a new notebook handler.
func NewNotebookHandler(service *service.NotebookService, logger *slog.Logger) *NotebookHandler {
	return &NotebookHandler{
		service: service,
		logger:  logger,
	}
}

// HealthCheck reports liveness.
// GET /health
func (h *NotebookHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scope builds the listing/read predicate for the request: personal id
// from the verified identity plus the optional team selector header.
func scope(r *http.Request) models.OwnershipFilter {
	return auth.ResolveOwnershipFilter(httputil.GetIdentity(r), httputil.TeamID(r))
}

// List retrieves the notebooks visible to the caller.
// GET /api/notebooks?archived=true|false
func (h *NotebookHandler) List(w http.ResponseWriter, r *http.Request) {
	var archived *bool
	if raw := r.URL.Query().Get("archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid archived filter")
			return
		}
		archived = &v
	}

	notebooks, err := h.service.List(r.Context(), scope(r), archived)
	if err != nil {
		h.logger.Error("list notebooks failed", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notebooks)
}

// Create creates a notebook owned by the request's ownership context.
// POST /api/notebooks
func (h *NotebookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNotebookRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	octx := auth.ResolveOwnershipContext(httputil.GetIdentity(r), httputil.TeamID(r))

	notebook, err := h.service.Create(r.Context(), octx, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, notebook)
}

// Get retrieves a single notebook; 403 when it belongs to another tenant.
// GET /api/notebooks/{id}
func (h *NotebookHandler) Get(w http.ResponseWriter, r *http.Request) {
	notebook, err := h.service.Get(r.Context(), scope(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notebook)
}

// Update applies a partial update to a notebook.
// PUT /api/notebooks/{id}
func (h *NotebookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateNotebookRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notebook, err := h.service.Update(r.Context(), scope(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notebook)
}

// Delete removes a notebook.
// DELETE /api/notebooks/{id}
func (h *NotebookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), scope(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "Notebook deleted successfully"})
}

// LinkSource attaches an existing source to a notebook.
// POST /api/notebooks/{id}/sources/{sourceID}
func (h *NotebookHandler) LinkSource(w http.ResponseWriter, r *http.Request) {
	err := h.service.LinkSource(r.Context(), scope(r), r.PathValue("id"), r.PathValue("sourceID"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "Source linked to notebook successfully"})
}

// UnlinkSource removes a source from a notebook.
// DELETE /api/notebooks/{id}/sources/{sourceID}
func (h *NotebookHandler) UnlinkSource(w http.ResponseWriter, r *http.Request) {
	err := h.service.UnlinkSource(r.Context(), scope(r), r.PathValue("id"), r.PathValue("sourceID"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "Source removed from notebook successfully"})
}

// ListSources returns the sources linked to a notebook.
// GET /api/notebooks/{id}/sources
func (h *NotebookHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.ListSources(r.Context(), scope(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sources)
}

// ListNotes returns the notes attached to a notebook.
// GET /api/notebooks/{id}/notes
func (h *NotebookHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotes(r.Context(), scope(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}
