// Package domain contains the core entities of the ReelMatch movie recommender.
package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Movie is one catalog entry. Its position in the catalog is its row in the similarity matrix.
type Movie struct {
	ID    int    `json:"movie_id"`
	Title string `json:"title"`
}

// Recommendation is a suggested movie ready for display.
type Recommendation struct {
	Title     string `json:"title"`
	MovieID   int    `json:"movie_id"`
	PosterURL string `json:"poster_url"`
	Score     Score  `json:"score" nullable:"true"`
}

// Score is a similarity value. Non-finite scores encode as JSON null and
// decode back to NaN, matching how the similarity artifact stores them.
type Score float64

// Finite reports whether the score is neither NaN nor infinite.
func (s Score) Finite() bool {
	f := float64(s)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Finite() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(s), 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Score(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid score %s: %w", b, err)
	}
	*s = Score(f)
	return nil
}
