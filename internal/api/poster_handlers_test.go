package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPoster(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name string
		path string
		want PosterResponse
	}{
		{
			name: "found",
			path: "/api/v1/posters/2",
			want: PosterResponse{MovieID: 2, URL: "https://image.tmdb.org/t/p/w500/2.jpg", Found: true, Outcome: "found"},
		},
		{
			name: "upstream not found",
			path: "/api/v1/posters/3",
			want: PosterResponse{
				MovieID: 3,
				URL:     testPlaceholder,
				Outcome: "not_found",
				Status:  http.StatusNotFound,
				Error:   "tmdb get movie [3] status 404: not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path)
			require.Equal(t, http.StatusOK, resp.Code)

			var got PosterResponse
			decodeData(t, resp, &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetPoster_NotInCatalog(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/posters/999")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Zero(t, ts.posters.Len(), "no lookup for ids outside the catalog")
}

func TestGetPoster_InvalidID(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/posters/0")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope(t, resp).Code)
}
