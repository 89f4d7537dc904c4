package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xavierca1/lead-roulette/internal/usecase"
)

type WebhookHandler struct {
	UC  *usecase.IngestLeadUseCase
	Log *slog.Logger
}

func NewWebhookHandler(uc *usecase.IngestLeadUseCase, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{UC: uc, Log: log}
}

// IngestLead (POST /api/webhooks/leads): entrada das campanhas.
func (h *WebhookHandler) IngestLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.IngestLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.UC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// CreateTestLead (POST /api/webhooks/create-test-lead?hot=true), só admin.
func (h *WebhookHandler) CreateTestLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.TestLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.IsHot, _ = strconv.ParseBool(r.URL.Query().Get("hot"))

	lead, err := h.UC.CreateTestLead(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}
