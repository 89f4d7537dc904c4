package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-roulette/internal/entity"
	"github.com/xavierca1/lead-roulette/internal/infra/http/handlers"
	"github.com/xavierca1/lead-roulette/internal/infra/http/middleware"
	"github.com/xavierca1/lead-roulette/internal/infra/queue"
	"github.com/xavierca1/lead-roulette/internal/roulette"
	"github.com/xavierca1/lead-roulette/internal/usecase"
)

var secret = []byte("segredo-de-teste")

type nopBrokers struct{}

func (nopBrokers) Upsert(ctx context.Context, b entity.Broker) error { return nil }

type nopProducer struct{}

func (nopProducer) PublishHandOff(ctx context.Context, p queue.HandOffPayload) error { return nil }

type nopHistory struct{}

func (nopHistory) ListByBroker(ctx context.Context, brokerID string, limit int) ([]entity.Capture, error) {
	return nil, nil
}

type nopDashboard struct{}

func (nopDashboard) Counts(ctx context.Context, since time.Time) (entity.DashboardCounts, error) {
	return entity.DashboardCounts{}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := roulette.New(roulette.Options{Logger: log})
	engine.RegisterStore(entity.Store{ID: "s1", Name: "Paulista", Radius: 100})

	queries := usecase.NewQueryUseCase(engine, nopHistory{}, nopDashboard{}, time.UTC)
	return newRouter(routes{
		Health:       handlers.NewHealthHandler(nil, nil, engine),
		Attendance:   handlers.NewAttendanceHandler(usecase.NewAttendanceUseCase(engine, nopBrokers{}, log), log),
		Leads:        handlers.NewLeadHandler(queries, log),
		Captures:     handlers.NewCaptureHandler(usecase.NewCaptureLeadUseCase(engine, nopProducer{}, log), queries, log),
		Webhooks:     handlers.NewWebhookHandler(usecase.NewIngestLeadUseCase(engine, log), log),
		Stores:       handlers.NewStoreHandler(queries, log),
		JWTSecret:    secret,
		IngestAPIKey: "chave",
		IngestLimit:  middleware.NewIPRateLimiter(60, log),
		CORSOrigins:  []string{"*"},
	}, log)
}

func token(t *testing.T, admin bool) string {
	t.Helper()
	claims := middleware.Claims{
		Name:    "Ana",
		Email:   "ana@roleta.test",
		Tier:    "forte",
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "b-ana",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return raw
}

func call(h http.Handler, method, path, bearer string, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicRoutes(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/health", "", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/metrics", "", "").Code)
}

func TestRouterRequiresToken(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/stores", "", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/stores", token(t, false), "").Code)
}

func TestRouterAdminOnly(t *testing.T) {
	r := testRouter(t)
	body := `{"campaign":"teste","adSet":"a"}`

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/admin/dashboard", token(t, false), "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/admin/dashboard", token(t, true), "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/webhooks/create-test-lead", token(t, false), body).Code)
	assert.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/webhooks/create-test-lead?hot=true", token(t, true), body).Code)
}

func TestRouterIngestNeedsAPIKey(t *testing.T) {
	r := testRouter(t)
	body := `{"campaign":"verao","adSet":"a","storeId":"s1"}`

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/webhooks/leads", "", body).Code)
	rec := call(r, http.MethodPost, "/api/webhooks/leads", "", body, "X-API-Key", "chave")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
