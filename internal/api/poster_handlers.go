package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerPosterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPoster",
		Method:      http.MethodGet,
		Path:        "/api/v1/posters/{movieId}",
		Summary:     "Resolve poster",
		Description: "Returns the poster URL for a catalog movie together with how the lookup ended",
		Tags:        []string{"Posters"},
	}, s.handleGetPoster)
}

// GetPosterInput identifies the movie.
type GetPosterInput struct {
	MovieID int `path:"movieId" minimum:"1" doc:"Upstream movie id"`
}

// PosterResponse describes one poster lookup.
type PosterResponse struct {
	MovieID int    `json:"movie_id" doc:"Upstream movie id"`
	URL     string `json:"url" doc:"Poster image, or the placeholder"`
	Found   bool   `json:"found" doc:"Whether a real poster was found"`
	Outcome string `json:"outcome" enum:"found,no_image_path,not_found,bad_status,network,decode,circuit_open" doc:"How the lookup ended"`
	Status  int    `json:"status,omitempty" doc:"Upstream HTTP status, when one was received"`
	Error   string `json:"error,omitempty" doc:"Failure cause, credentials redacted"`
}

// GetPosterOutput wraps the poster response for Huma.
type GetPosterOutput struct {
	Body PosterResponse
}

func (s *Server) handleGetPoster(ctx context.Context, input *GetPosterInput) (*GetPosterOutput, error) {
	p, err := s.services.Recommendations.Poster(ctx, input.MovieID)
	if err != nil {
		return nil, s.fail(err)
	}

	resp := PosterResponse{
		MovieID: p.MovieID,
		URL:     p.URL,
		Found:   p.OK(),
		Outcome: string(p.Outcome),
		Status:  p.Status,
	}
	if p.Err != nil {
		resp.Error = p.Err.Error()
	}
	return &GetPosterOutput{Body: resp}, nil
}
