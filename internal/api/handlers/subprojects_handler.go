package handlers

import (
	"net/http"

	"github.com/project-manager/engine/internal/api/types"
	"github.com/project-manager/engine/internal/services"
	appErr "github.com/project-manager/engine/pkg/errors"
)

type SubProjectsHandler struct {
	svc services.SubProjectService
}

func NewSubProjectsHandler(svc services.SubProjectService) *SubProjectsHandler {
	return &SubProjectsHandler{svc: svc}
}

func (h *SubProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := services.ParseID(q.Get("id")); id != 0 {
		sp, err := h.svc.GetSubProject(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sp)
		return
	}
	projectID := services.ParseID(q.Get("project_id"))
	if projectID == 0 {
		writeError(w, r, appErr.Invalid("Subproject ID or project ID is required"))
		return
	}
	items, err := h.svc.ListSubProjects(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SubProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.SubProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := h.svc.AddSubProject(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

// Update applies a partial update; fields absent from the body keep their values.
func (h *SubProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := services.ParseID(r.URL.Query().Get("id"))
	if id == 0 {
		writeError(w, r, appErr.Invalid("Subproject ID is required"))
		return
	}
	var patch services.SubProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := h.svc.UpdateSubProject(r.Context(), id, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (h *SubProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSubProject(r.Context(), services.ParseID(r.URL.Query().Get("id"))); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Subproject deleted successfully"})
}
