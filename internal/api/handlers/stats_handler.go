package handlers

import (
	"net/http"

	"github.com/project-manager/engine/internal/services"
)

type StatsHandler struct {
	svc services.ProjectService
}

func NewStatsHandler(svc services.ProjectService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Get returns project counts per status.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
