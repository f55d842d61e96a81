// Package recommend ranks catalog movies by similarity to a selected title.
package recommend

import (
	"cmp"
	"math"
	"slices"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

// DefaultCount is the number of suggestions returned when no count is configured.
const DefaultCount = 5

// Suggestion is one ranked neighbour of the selected movie.
type Suggestion struct {
	Movie domain.Movie
	Score float64
	Rank  int // 1-based
}

// Recommender answers nearest-neighbour queries over loaded artifacts.
// It holds no mutable state and is safe for concurrent use.
type Recommender struct {
	artifacts *catalog.Artifacts
	k         int
}

// New creates a recommender returning k suggestions per query.
// A non-positive k falls back to DefaultCount.
func New(artifacts *catalog.Artifacts, k int) *Recommender {
	if k <= 0 {
		k = DefaultCount
	}
	return &Recommender{artifacts: artifacts, k: k}
}

// Count returns the configured number of suggestions.
func (r *Recommender) Count() int {
	return r.k
}

// Recommend returns the movies most similar to title, best first.
//
// The result has min(k, N-1) entries, never contains the selected movie and is
// identical for identical inputs. Ties keep catalog order. Non-finite scores
// (NaN, ±Inf) rank after every finite score.
func (r *Recommender) Recommend(title string) ([]Suggestion, error) {
	c := r.artifacts.Catalog
	index, ok := c.IndexOf(title)
	if !ok {
		return nil, domainerrors.NotFoundf("movie %q is not in the catalog", title)
	}

	n := c.Len()
	if n <= 1 {
		return []Suggestion{}, nil
	}

	row := r.artifacts.Similarity.Row(index)

	candidates := make([]int, 0, n-1)
	for i := range n {
		if i != index {
			candidates = append(candidates, i)
		}
	}

	slices.SortStableFunc(candidates, func(a, b int) int {
		return compareScores(row[a], row[b])
	})

	take := min(r.k, len(candidates))
	out := make([]Suggestion, take)
	for rank, i := range candidates[:take] {
		out[rank] = Suggestion{
			Movie: c.Movie(i),
			Score: row[i],
			Rank:  rank + 1,
		}
	}
	return out, nil
}

// compareScores orders finite scores descending, then every non-finite score.
func compareScores(a, b float64) int {
	aBad, bBad := !isFinite(a), !isFinite(b)
	switch {
	case aBad && bBad:
		return 0
	case aBad:
		return 1
	case bBad:
		return -1
	}
	return cmp.Compare(b, a)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
