// Package logger monta o slog da aplicação e carrega ids da requisição no contexto.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	brokerIDKey  contextKey = "broker_id"
)

// New: texto em desenvolvimento (ou LOG_FORMAT=console), JSON no resto.
func New(env, format string) *slog.Logger {
	return newWithWriter(os.Stdout, env, format)
}

func newWithWriter(w io.Writer, env, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	switch {
	case strings.EqualFold(format, "console"), strings.EqualFold(env, "development") && format == "":
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func WithBrokerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, brokerIDKey, id)
}

// FromContext devolve o logger com request_id e broker_id, se presentes.
func FromContext(ctx context.Context, log *slog.Logger) *slog.Logger {
	if ctx == nil {
		return log
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		log = log.With(slog.String("request_id", id))
	}
	if id, ok := ctx.Value(brokerIDKey).(string); ok && id != "" {
		log = log.With(slog.String("broker_id", id))
	}
	return log
}
