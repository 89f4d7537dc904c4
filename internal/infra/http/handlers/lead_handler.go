package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/lead-roulette/internal/usecase"
)

type LeadHandler struct {
	Queries *usecase.QueryUseCase
	Log     *slog.Logger
}

func NewLeadHandler(queries *usecase.QueryUseCase, log *slog.Logger) *LeadHandler {
	return &LeadHandler{Queries: queries, Log: log}
}

// Waiting (GET /api/leads/waiting?storeId=)
func (h *LeadHandler) Waiting(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Queries.Waiting(r.URL.Query().Get("storeId"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// Assigned (GET /api/leads/assigned)
func (h *LeadHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Queries.Assigned(broker.ID))
}
