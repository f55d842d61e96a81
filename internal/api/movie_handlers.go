package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelmatch/reelmatch-server/internal/service"
)

func (s *Server) registerMovieRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies",
		Summary:     "List titles",
		Description: "Returns every catalog title, in catalog order or sorted for display",
		Tags:        []string{"Movies"},
	}, s.handleListMovies)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchMovies",
		Method:      http.MethodGet,
		Path:        "/api/v1/movies/search",
		Summary:     "Search titles",
		Description: "Full-text search over catalog titles with stemming, prefix and fuzzy matching",
		Tags:        []string{"Movies"},
	}, s.handleSearchMovies)
}

// ListMoviesInput contains parameters for listing titles.
type ListMoviesInput struct {
	Sort string `query:"sort" enum:"catalog,title" default:"catalog" doc:"catalog keeps artifact order; title collates for display"`
}

// MoviesResponse contains the catalog titles.
type MoviesResponse struct {
	Titles []string `json:"titles" doc:"Catalog titles"`
	Total  int      `json:"total" doc:"Number of titles"`
}

// ListMoviesOutput wraps the titles for Huma.
type ListMoviesOutput struct {
	Body MoviesResponse
}

func (s *Server) handleListMovies(_ context.Context, input *ListMoviesInput) (*ListMoviesOutput, error) {
	titles := s.services.Recommendations.Titles(input.Sort == "title")
	return &ListMoviesOutput{
		Body: MoviesResponse{Titles: titles, Total: len(titles)},
	}, nil
}

// SearchMoviesInput contains parameters for a title search.
type SearchMoviesInput struct {
	Query string `query:"q" doc:"Search text"`
	Limit int    `query:"limit" doc:"Maximum hits, 1 to 50 (default 10)"`
}

// TitleHit is one search match.
type TitleHit struct {
	Position int     `json:"position" doc:"Catalog position of the title"`
	MovieID  int     `json:"movie_id" doc:"Upstream movie id"`
	Title    string  `json:"title" doc:"Catalog title"`
	Score    float64 `json:"score" doc:"Relevance score"`
}

// SearchResponse contains search hits in descending relevance.
type SearchResponse struct {
	Query string     `json:"query" doc:"Query as received"`
	Hits  []TitleHit `json:"hits" doc:"Matching titles"`
}

// SearchMoviesOutput wraps the search response for Huma.
type SearchMoviesOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearchMovies(ctx context.Context, input *SearchMoviesInput) (*SearchMoviesOutput, error) {
	hits, err := s.services.Recommendations.SearchTitles(ctx, service.SearchRequest{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	out := make([]TitleHit, len(hits))
	for i, h := range hits {
		out[i] = TitleHit{Position: h.Position, MovieID: h.MovieID, Title: h.Title, Score: h.Score}
	}

	return &SearchMoviesOutput{
		Body: SearchResponse{Query: input.Query, Hits: out},
	}, nil
}
