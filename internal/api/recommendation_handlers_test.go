package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmatch/reelmatch-server/internal/id"
)

func titlesOf(items []RecommendationItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestCreateRecommendations(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/recommendations", map[string]any{"title": "A"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var rec RecommendationResponse
	decodeData(t, resp, &rec)

	assert.Equal(t, "A", rec.SelectedTitle)
	assert.Equal(t, []string{"C", "F", "B", "E", "D"}, titlesOf(rec.Recommendations))
	require.NotNil(t, rec.UpdatedAt)

	first := rec.Recommendations[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 3, first.MovieID)
	assert.Equal(t, testPlaceholder, first.PosterURL)
	assert.InDelta(t, 0.95, float64(first.Score), 1e-9)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/6.jpg", rec.Recommendations[1].PosterURL)

	cookie := sessionCookieFrom(t, resp)
	assert.True(t, id.IsSessionID(cookie.Value))
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
}

func TestCreateRecommendations_NonFiniteScoreIsNull(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/recommendations", map[string]any{"title": "F"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"score":null`)

	var rec RecommendationResponse
	decodeData(t, resp, &rec)
	assert.Equal(t, []string{"A", "E", "B", "C", "D"}, titlesOf(rec.Recommendations))
	assert.False(t, rec.Recommendations[4].Score.Finite())
}

func TestCreateRecommendations_ReusesSession(t *testing.T) {
	ts := setupTestServer(t, Options{})

	first := ts.api.Post("/api/v1/recommendations", map[string]any{"title": "A"})
	require.Equal(t, http.StatusOK, first.Code)
	cookie := sessionCookieFrom(t, first)

	second := ts.api.Post("/api/v1/recommendations", cookieHeader(cookie), map[string]any{"title": "D"})
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, cookie.Value, sessionCookieFrom(t, second).Value)

	got := ts.api.Get("/api/v1/recommendations", cookieHeader(cookie))
	require.Equal(t, http.StatusOK, got.Code)

	var rec RecommendationResponse
	decodeData(t, got, &rec)
	assert.Equal(t, "D", rec.SelectedTitle)
	assert.Equal(t, "E", rec.Recommendations[0].Title)
}

func TestCreateRecommendations_UnknownTitle(t *testing.T) {
	ts := setupTestServer(t, Options{})

	first := ts.api.Post("/api/v1/recommendations", map[string]any{"title": "A"})
	require.Equal(t, http.StatusOK, first.Code)
	cookie := sessionCookieFrom(t, first)

	resp := ts.api.Post("/api/v1/recommendations", cookieHeader(cookie), map[string]any{"title": "Zardoz"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Contains(t, env.Error, "Zardoz")

	// The previous list survives a failed lookup.
	got := ts.api.Get("/api/v1/recommendations", cookieHeader(cookie))
	var rec RecommendationResponse
	decodeData(t, got, &rec)
	assert.Equal(t, "A", rec.SelectedTitle)
}

func TestCreateRecommendations_BlankTitle(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/recommendations", map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "is required", env.Details["title"])
}

func TestGetRecommendations_NoSession(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for _, header := range []string{"Accept: application/json", "Cookie: " + SessionCookieName + "=not-a-session"} {
		resp := ts.api.Get("/api/v1/recommendations", header)
		require.Equal(t, http.StatusOK, resp.Code)

		var rec RecommendationResponse
		decodeData(t, resp, &rec)
		assert.Empty(t, rec.SelectedTitle)
		assert.Empty(t, rec.Recommendations)
		assert.Nil(t, rec.UpdatedAt)
	}
}

func TestGetRecommendations_SessionsAreIndependent(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/recommendations", map[string]any{"title": "A"})
	require.Equal(t, http.StatusOK, resp.Code)

	other, err := id.NewSessionID()
	require.NoError(t, err)

	got := ts.api.Get("/api/v1/recommendations", "Cookie: "+SessionCookieName+"="+other)
	var rec RecommendationResponse
	decodeData(t, got, &rec)
	assert.Empty(t, rec.Recommendations)
}
