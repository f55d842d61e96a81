package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmatch/reelmatch-server/internal/service"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	decodeData(t, resp, &health)

	assert.Equal(t, "healthy", health.Status)
	require.Contains(t, health.Components, "catalog")
	require.Contains(t, health.Components, "posters")
	require.Contains(t, health.Components, "sessions")
	assert.Contains(t, health.Components["catalog"].Message, "6 movies")
	assert.Contains(t, health.Components["catalog"].Message, "1 non-finite scores")
	assert.Equal(t, "0 active sessions", health.Components["sessions"].Message)
}

func TestHealthCheck_DegradedWhenCircuitOpen(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.posters.breaker = "open"

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	decodeData(t, resp, &health)

	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "degraded", health.Components["posters"].Status)
	assert.Equal(t, "healthy", health.Components["catalog"].Status)
}

func TestHealthComponents(t *testing.T) {
	tests := []struct {
		name   string
		check  func(service.Health) ComponentHealth
		health service.Health
		want   string
	}{
		{"posters closed", checkPosters, service.Health{PosterBreaker: "closed"}, statusHealthy},
		{"posters half-open", checkPosters, service.Health{PosterBreaker: "half-open"}, statusDegraded},
		{"posters open", checkPosters, service.Health{PosterBreaker: "open"}, statusDegraded},
		{"sessions ok", checkSessions, service.Health{Sessions: 3}, statusHealthy},
		{"sessions failing", checkSessions, service.Health{SessionsErr: assert.AnError}, statusUnhealthy},
		{"catalog", checkCatalog, service.Health{Movies: 4803}, statusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.health).Status)
		})
	}
}

func TestWorse(t *testing.T) {
	assert.Equal(t, statusDegraded, worse(statusHealthy, statusDegraded))
	assert.Equal(t, statusUnhealthy, worse(statusDegraded, statusUnhealthy))
	assert.Equal(t, statusUnhealthy, worse(statusUnhealthy, statusHealthy))
	assert.Equal(t, statusHealthy, worse(statusHealthy, statusHealthy))
}
