package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/infra/logger"
)

type contextKey string

const brokerKey contextKey = "broker"

// Claims é o que o provedor de identidade coloca no token.
type Claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Tier    string `json:"tier"`
	IsTop   bool   `json:"is_top"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c *Claims) Broker() entity.Broker {
	return entity.Broker{
		ID:      c.Subject,
		Name:    c.Name,
		Email:   c.Email,
		Tier:    entity.Tier(strings.ToUpper(c.Tier)),
		IsTop:   c.IsTop,
		IsAdmin: c.IsAdmin,
	}
}

// Auth valida o Bearer (HS256) e põe o corretor no contexto.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing token")
				return
			}

			claims, err := parseClaims(raw, secret)
			if err != nil || claims.Subject == "" {
				unauthorized(w, "invalid token")
				return
			}

			broker := claims.Broker()
			ctx := WithBroker(r.Context(), broker)
			ctx = logger.WithBrokerID(ctx, broker.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, ok := BrokerFromContext(r.Context())
		if !ok || !b.IsAdmin {
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithBroker(ctx context.Context, b entity.Broker) context.Context {
	return context.WithValue(ctx, brokerKey, b)
}

func BrokerFromContext(ctx context.Context) (entity.Broker, bool) {
	b, ok := ctx.Value(brokerKey).(entity.Broker)
	return b, ok
}

func parseClaims(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func extractBearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", msg)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "error": msg})
}
