package handlers

import (
	"net/http"

	"github.com/project-manager/engine/internal/api/types"
	"github.com/project-manager/engine/internal/repository"
	"github.com/project-manager/engine/internal/services"
)

type ProjectsHandler struct {
	svc services.ProjectService
}

func NewProjectsHandler(svc services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

// Get returns one project when ?id is a positive integer, otherwise the filtered list.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := services.ParseID(q.Get("id")); id != 0 {
		p, err := h.svc.GetProject(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	items, err := h.svc.ListProjects(r.Context(), repository.ProjectFilter{
		Status:   q.Get("status"),
		Type:     q.Get("type"),
		Priority: q.Get("priority"),
		Query:    q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.CreateProject(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id := services.ParseID(r.URL.Query().Get("id"))
	var in services.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.ReplaceProject(r.Context(), id, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), services.ParseID(r.URL.Query().Get("id"))); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Project deleted successfully"})
}
