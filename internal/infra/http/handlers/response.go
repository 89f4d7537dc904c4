package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/infra/http/middleware"
	"github.com/xavierca1/lead-roulette/internal/infra/logger"
	"github.com/xavierca1/lead-roulette/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeJSON serializa antes de escrever o status: corpo que não vira JSON
// (NaN, por exemplo) sai como 500 com erro, nunca como resposta vazia.
func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Default().Error("falha ao serializar resposta", "error", err, "status", status)
		status = http.StatusInternalServerError
		payload, _ = json.Marshal(errorResponse{Code: usecase.CodeInternal, Error: "erro interno"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(payload, '\n')); err != nil {
		slog.Default().Warn("falha ao escrever resposta", "error", err)
	}
}

// writeError traduz DomainError/TechnicalError em status HTTP.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := de.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		if de.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(de.RetryAfter.Seconds()))))
		}
		writeJSON(w, status, errorResponse{Code: de.Code, Error: de.Message, Details: de.Details})
		return
	}

	log = logger.FromContext(r.Context(), log)
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Error("falha técnica", "code", te.Code, "error", te.Err, "path", r.URL.Path)
		if te.Temporary() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: te.Code, Error: te.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: te.Code, Error: te.Message})
		return
	}

	log.Error("erro não mapeado", "error", err, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: usecase.CodeInternal, Error: "erro interno"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: usecase.CodeValidation, Error: "JSON inválido: " + err.Error()})
		return false
	}
	return true
}

// currentBroker: rotas com Auth sempre têm corretor no contexto.
func currentBroker(w http.ResponseWriter, r *http.Request) (entity.Broker, bool) {
	b, ok := middleware.BrokerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Error: "missing identity"})
	}
	return b, ok
}
