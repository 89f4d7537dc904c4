package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/lead-roulette/internal/usecase"
)

type AttendanceHandler struct {
	UC  *usecase.AttendanceUseCase
	Log *slog.Logger
}

func NewAttendanceHandler(uc *usecase.AttendanceUseCase, log *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{UC: uc, Log: log}
}

// Checkin (POST /api/attendance/checkin)
func (h *AttendanceHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	var input usecase.CheckinInput
	if !decodeJSON(w, r, &input) {
		return
	}

	att, err := h.UC.Checkin(r.Context(), broker, input)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, att)
}

// Checkout (DELETE /api/attendance/checkout)
func (h *AttendanceHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	att, err := h.UC.Checkout(r.Context(), broker.ID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

// Status (GET /api/attendance/status): null quando o corretor não está presente.
func (h *AttendanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	broker, ok := currentBroker(w, r)
	if !ok {
		return
	}
	att, present := h.UC.Status(r.Context(), broker.ID)
	if !present {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, att)
}
