package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingOK(context.Context) error   { return nil }
func pingDown(context.Context) error { return errors.New("connection refused") }

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     []DependencyCheck
		wantCode   int
		wantStatus string
		wantDeps   map[string]string
	}{
		{
			name: "all up",
			checks: []DependencyCheck{
				{Name: "postgres", Critical: true, Ping: pingOK},
				{Name: "redis", Ping: pingOK},
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantDeps:   map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name: "optional dependency down",
			checks: []DependencyCheck{
				{Name: "postgres", Critical: true, Ping: pingOK},
				{Name: "redis", Ping: pingDown},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantDeps:   map[string]string{"postgres": "ok", "redis": "down"},
		},
		{
			name: "critical dependency down",
			checks: []DependencyCheck{
				{Name: "postgres", Critical: true, Ping: pingDown},
				{Name: "redis", Ping: pingDown},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "error",
			wantDeps:   map[string]string{"postgres": "down", "redis": "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, "test", "v1")

			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			require.Equal(t, tt.wantCode, rec.Code)
			resp := decode[ReadinessResponse](t, rec)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantDeps, resp.Dependencies)
		})
	}
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil, "test", "v1")

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LivenessResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1", resp.Version)
}
