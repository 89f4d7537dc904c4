package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xavierca1/lead-roulette/internal/usecase"
)

// StoreHandler serve as rotas de leitura: lojas, perfil e painel.
type StoreHandler struct {
	Queries *usecase.QueryUseCase
	Log     *slog.Logger
	Now     func() time.Time
}

func NewStoreHandler(queries *usecase.QueryUseCase, log *slog.Logger) *StoreHandler {
	return &StoreHandler{Queries: queries, Log: log, Now: time.Now}
}

// List (GET /api/stores)
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Queries.Stores())
}

// Me (GET /api/users/me)
func (h *StoreHandler) Me(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, usecase.NewUserView(broker))
}

// Dashboard (GET /api/admin/dashboard)
func (h *StoreHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Queries.AdminDashboard(r.Context(), h.Now())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
