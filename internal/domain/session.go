package domain

import "time"

// Session holds what an interactive client last asked for, so that re-rendering the
// page keeps showing the same results until the next explicit request.
type Session struct {
	ID              string           `json:"id"`
	SelectedTitle   string           `json:"selected_title,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewSession creates an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:              id,
		Recommendations: []Recommendation{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Replace overwrites the stored list wholesale.
func (s *Session) Replace(title string, recs []Recommendation, now time.Time) {
	stored := make([]Recommendation, len(recs))
	copy(stored, recs)

	s.SelectedTitle = title
	s.Recommendations = stored
	s.UpdatedAt = now
}

// HasRecommendations reports whether a list has been computed in this session.
func (s *Session) HasRecommendations() bool {
	return len(s.Recommendations) > 0
}
