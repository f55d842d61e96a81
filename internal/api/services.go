package api

import "github.com/reelmatch/reelmatch-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Recommendations *service.RecommendationService
}
