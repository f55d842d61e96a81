package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSession("ses-1", now)

	assert.Equal(t, "ses-1", s.ID)
	assert.NotNil(t, s.Recommendations)
	assert.False(t, s.HasRecommendations())
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now, s.UpdatedAt)
}

func TestSession_ReplaceOverwritesWholesale(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("ses-1", start)

	first := []Recommendation{{Title: "B", MovieID: 2}, {Title: "C", MovieID: 3}}
	s.Replace("A", first, start.Add(time.Minute))

	second := []Recommendation{{Title: "D", MovieID: 4}}
	later := start.Add(2 * time.Minute)
	s.Replace("E", second, later)

	assert.Equal(t, "E", s.SelectedTitle)
	assert.Equal(t, second, s.Recommendations)
	assert.Equal(t, later, s.UpdatedAt)
	assert.Equal(t, start, s.CreatedAt)
	assert.True(t, s.HasRecommendations())
}

func TestSession_ReplaceCopiesInput(t *testing.T) {
	s := NewSession("ses-1", time.Now())
	recs := []Recommendation{{Title: "B", MovieID: 2}}

	s.Replace("A", recs, time.Now())
	recs[0].Title = "mutated"

	assert.Equal(t, "B", s.Recommendations[0].Title)
}
