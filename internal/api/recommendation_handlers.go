package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	"github.com/reelmatch/reelmatch-server/internal/id"
	"github.com/reelmatch/reelmatch-server/internal/service"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createRecommendations",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Recommend movies",
		Description: "Computes the nearest titles to the given one, resolves their posters and stores the list in the caller's session",
		Tags:        []string{"Recommendations"},
	}, s.handleCreateRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Last recommendations",
		Description: "Returns the list most recently computed in the caller's session",
		Tags:        []string{"Recommendations"},
	}, s.handleGetRecommendations)
}

// RecommendationItem is one ranked suggestion.
type RecommendationItem struct {
	Rank      int          `json:"rank" doc:"1-based rank"`
	Title     string       `json:"title" doc:"Catalog title"`
	MovieID   int          `json:"movie_id" doc:"Upstream movie id"`
	PosterURL string       `json:"poster_url" doc:"Poster image, or the placeholder"`
	Score     domain.Score `json:"score" nullable:"true" doc:"Similarity to the selected title; null when not finite"`
}

// RecommendationResponse contains a session's current list.
type RecommendationResponse struct {
	SelectedTitle   string               `json:"selected_title" doc:"Title the list was computed for"`
	Recommendations []RecommendationItem `json:"recommendations" doc:"Suggestions in rank order"`
	UpdatedAt       *time.Time           `json:"updated_at,omitempty" doc:"When the list was computed"`
}

// CreateRecommendationsInput contains the title to recommend from.
type CreateRecommendationsInput struct {
	SessionID string `cookie:"reelmatch_session"`
	Body      struct {
		Title string `json:"title" doc:"Catalog title, matched exactly"`
	}
}

// CreateRecommendationsOutput returns the new list and (re)issues the session cookie.
type CreateRecommendationsOutput struct {
	SetCookie string `header:"Set-Cookie"`
	Body      RecommendationResponse
}

func (s *Server) handleCreateRecommendations(ctx context.Context, input *CreateRecommendationsInput) (*CreateRecommendationsOutput, error) {
	sessionID, _, err := sessionFor(input.SessionID)
	if err != nil {
		return nil, s.fail(err)
	}

	sess, err := s.services.Recommendations.Recommend(ctx, sessionID, service.RecommendRequest{Title: input.Body.Title})
	if err != nil {
		return nil, s.fail(err)
	}

	return &CreateRecommendationsOutput{
		SetCookie: s.sessionCookie(sessionID).String(),
		Body:      newRecommendationResponse(sess),
	}, nil
}

// GetRecommendationsInput identifies the caller's session.
type GetRecommendationsInput struct {
	SessionID string `cookie:"reelmatch_session"`
}

// GetRecommendationsOutput wraps the current list for Huma.
type GetRecommendationsOutput struct {
	Body RecommendationResponse
}

func (s *Server) handleGetRecommendations(ctx context.Context, input *GetRecommendationsInput) (*GetRecommendationsOutput, error) {
	sessionID := input.SessionID
	if !id.IsSessionID(sessionID) {
		sessionID = ""
	}

	sess, err := s.services.Recommendations.Last(ctx, sessionID)
	if err != nil {
		return nil, s.fail(err)
	}

	return &GetRecommendationsOutput{Body: newRecommendationResponse(sess)}, nil
}

func newRecommendationResponse(sess *domain.Session) RecommendationResponse {
	items := make([]RecommendationItem, len(sess.Recommendations))
	for i, r := range sess.Recommendations {
		items[i] = RecommendationItem{
			Rank:      i + 1,
			Title:     r.Title,
			MovieID:   r.MovieID,
			PosterURL: r.PosterURL,
			Score:     r.Score,
		}
	}

	resp := RecommendationResponse{
		SelectedTitle:   sess.SelectedTitle,
		Recommendations: items,
	}
	if sess.HasRecommendations() {
		updated := sess.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
