package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelmatch/reelmatch-server/internal/service"
)

// Component status values, ordered from best to worst.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	h := s.services.Recommendations.Health()

	components := map[string]ComponentHealth{
		"catalog":  checkCatalog(h),
		"posters":  checkPosters(h),
		"sessions": checkSessions(h),
	}

	overall := statusHealthy
	for _, c := range components {
		overall = worse(overall, c.Status)
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkCatalog reports the loaded artifacts. They are immutable, so the catalog is always healthy.
func checkCatalog(h service.Health) ComponentHealth {
	return ComponentHealth{
		Status: statusHealthy,
		Message: fmt.Sprintf("%d movies, %d duplicate titles, %d non-finite scores, %d recommendations per request",
			h.Movies, h.DuplicateTitles, h.NonFiniteScores, h.Recommendations),
	}
}

// checkPosters reports the breaker in front of the poster API. Posters degrade to
// placeholders rather than fail, so the worst case is degraded.
func checkPosters(h service.Health) ComponentHealth {
	switch h.PosterBreaker {
	case "open":
		return ComponentHealth{Status: statusDegraded, Message: fmt.Sprintf("circuit open, serving placeholders (%d cached)", h.PostersCached)}
	case "half-open":
		return ComponentHealth{Status: statusDegraded, Message: fmt.Sprintf("circuit probing (%d cached)", h.PostersCached)}
	default:
		return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d cached", h.PostersCached)}
	}
}

func checkSessions(h service.Health) ComponentHealth {
	if h.SessionsErr != nil {
		return ComponentHealth{Status: statusUnhealthy, Message: "session store unreachable"}
	}
	switch h.Sessions {
	case 1:
		return ComponentHealth{Status: statusHealthy, Message: "1 active session"}
	default:
		return ComponentHealth{Status: statusHealthy, Message: fmt.Sprintf("%d active sessions", h.Sessions)}
	}
}

func worse(a, b string) string {
	rank := map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
