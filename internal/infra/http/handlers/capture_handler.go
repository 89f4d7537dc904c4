package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/lead-roulette/internal/usecase"
)

type CaptureHandler struct {
	UC      *usecase.CaptureLeadUseCase
	Queries *usecase.QueryUseCase
	Log     *slog.Logger
}

func NewCaptureHandler(uc *usecase.CaptureLeadUseCase, queries *usecase.QueryUseCase, log *slog.Logger) *CaptureHandler {
	return &CaptureHandler{UC: uc, Queries: queries, Log: log}
}

// Capture (POST /api/captures/{leadId})
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	leadID := chi.URLParam(r, "leadId")
	if leadID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: usecase.CodeValidation, Error: "leadId is required"})
		return
	}

	c, err := h.UC.Execute(r.Context(), broker, leadID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// My (GET /api/captures/my?limit=50)
func (h *CaptureHandler) My(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	captures, err := h.Queries.MyCaptures(r.Context(), broker.ID, limit)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, captures)
}

// Stats (GET /api/captures/stats)
func (h *CaptureHandler) Stats(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Queries.Stats(broker.ID))
}
