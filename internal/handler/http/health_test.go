package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		pingers        map[string]func(ctx context.Context) error
		expectedStatus int
		expectStatus   string
	}{
		{
			name: "all adapters reachable",
			pingers: map[string]func(ctx context.Context) error{
				"docstore": func(ctx context.Context) error { return nil },
			},
			expectedStatus: http.StatusOK,
			expectStatus:   "ok",
		},
		{
			name: "one adapter unreachable",
			pingers: map[string]func(ctx context.Context) error{
				"docstore": func(ctx context.Context) error { return errors.New("connection refused") },
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectStatus:   "unhealthy",
		},
		{
			name:           "no adapters configured reports ok",
			pingers:        map[string]func(ctx context.Context) error{},
			expectedStatus: http.StatusOK,
			expectStatus:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &HealthHandler{Version: "test-version", Pingers: tt.pingers}

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectStatus, resp.Status)
			assert.Equal(t, "test-version", resp.Version)
		})
	}
}

func TestReadyHandler_ReturnsServiceUnavailableOnFailingPinger(t *testing.T) {
	handler := &ReadyHandler{Pingers: map[string]func(ctx context.Context) error{
		"kv": func(ctx context.Context) error { return errors.New("timeout") },
	}}

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyHandler_ReturnsOKWhenAllPingersSucceed(t *testing.T) {
	handler := &ReadyHandler{Pingers: map[string]func(ctx context.Context) error{
		"kv": func(ctx context.Context) error { return nil },
	}}

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLiveHandler_AlwaysReturnsOK(t *testing.T) {
	handler := &LiveHandler{}

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
