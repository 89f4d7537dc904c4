package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type ConnChecker interface {
	IsClosed() bool
}

// Backlog expõe quantas gravações estão pendentes na fila de reenvio.
type Backlog interface {
	PendingWrites() int
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  ConnChecker
	Engine    Backlog
	StartTime time.Time
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Uptime        string            `json:"uptime"`
	PendingWrites int               `json:"pendingWrites"`
	Dependencies  map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, rabbitMQ ConnChecker, engine Backlog) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Engine:    engine,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	pending := 0
	if h.Engine != nil {
		pending = h.Engine.PendingWrites()
	}

	response := HealthResponse{
		Status:        status,
		Version:       "1.0.0",
		Uptime:        time.Since(h.StartTime).Round(time.Second).String(),
		PendingWrites: pending,
		Dependencies:  deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}
