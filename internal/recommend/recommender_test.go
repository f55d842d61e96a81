package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

func newArtifacts(t *testing.T, titles []string, rows [][]float64) *catalog.Artifacts {
	t.Helper()

	movies := make([]domain.Movie, len(titles))
	for i, title := range titles {
		movies[i] = domain.Movie{ID: i + 1, Title: title}
	}

	c, err := catalog.New(movies, catalog.FirstMatch)
	require.NoError(t, err)
	m, err := catalog.NewMatrix(rows)
	require.NoError(t, err)
	a, err := catalog.Bind(c, m)
	require.NoError(t, err)
	return a
}

// sixMovies has a fully specified row for "A"; other rows are filled symmetrically.
func sixMovies(t *testing.T) *catalog.Artifacts {
	t.Helper()
	return newArtifacts(t, []string{"A", "B", "C", "D", "E", "F"}, [][]float64{
		{1.0, 0.9, 0.95, 0.1, 0.5, 0.95},
		{0.9, 1.0, 0.2, 0.3, 0.4, 0.6},
		{0.95, 0.2, 1.0, 0.7, 0.1, 0.3},
		{0.1, 0.3, 0.7, 1.0, 0.8, 0.2},
		{0.5, 0.4, 0.1, 0.8, 1.0, 0.9},
		{0.95, 0.6, 0.3, 0.2, 0.9, 1.0},
	})
}

func titlesOf(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Movie.Title
	}
	return out
}

func TestRecommend_RanksBySimilarityWithCatalogOrderTies(t *testing.T) {
	r := New(sixMovies(t), 5)

	got, err := r.Recommend("A")
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "F", "B", "E", "D"}, titlesOf(got))
	assert.Equal(t, 3, got[0].Movie.ID)
	assert.Equal(t, 0.95, got[0].Score)
	for i, s := range got {
		assert.Equal(t, i+1, s.Rank)
	}
}

func TestRecommend_Properties(t *testing.T) {
	a := sixMovies(t)
	r := New(a, 5)

	for _, title := range a.Catalog.Titles() {
		t.Run(title, func(t *testing.T) {
			got, err := r.Recommend(title)
			require.NoError(t, err)

			assert.Len(t, got, min(5, a.Catalog.Len()-1))

			seen := map[int]bool{}
			for i, s := range got {
				assert.NotEqual(t, title, s.Movie.Title, "query must be excluded")
				assert.False(t, seen[s.Movie.ID], "duplicate suggestion %d", s.Movie.ID)
				seen[s.Movie.ID] = true
				if i > 0 {
					assert.LessOrEqual(t, s.Score, got[i-1].Score)
				}
			}

			again, err := r.Recommend(title)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRecommend_UnknownTitle(t *testing.T) {
	r := New(sixMovies(t), 5)

	_, err := r.Recommend("Z")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRecommend_SingleMovieCatalog(t *testing.T) {
	r := New(newArtifacts(t, []string{"Only"}, [][]float64{{1}}), 5)

	got, err := r.Recommend("Only")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommend_SmallCatalogReturnsEveryOtherMovie(t *testing.T) {
	r := New(newArtifacts(t, []string{"A", "B", "C"}, [][]float64{
		{1, 0.2, 0.8},
		{0.2, 1, 0.1},
		{0.8, 0.1, 1},
	}), 5)

	got, err := r.Recommend("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, titlesOf(got))
}

func TestRecommend_NonFiniteScoresRankLast(t *testing.T) {
	nan := math.NaN()
	r := New(newArtifacts(t, []string{"A", "B", "C", "D", "E"}, [][]float64{
		{1, nan, math.Inf(1), 0.3, 0.1},
		{nan, 1, 0, 0, 0},
		{math.Inf(1), 0, 1, 0, 0},
		{0.3, 0, 0, 1, 0},
		{0.1, 0, 0, 0, 1},
	}), 4)

	got, err := r.Recommend("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "E", "B", "C"}, titlesOf(got))
}

func TestRecommend_SelfExcludedByPositionNotScore(t *testing.T) {
	// The diagonal is not the row maximum here; the query must still be dropped.
	r := New(newArtifacts(t, []string{"A", "B", "C"}, [][]float64{
		{0.1, 0.5, 0.9},
		{0.5, 1, 0.2},
		{0.9, 0.2, 1},
	}), 5)

	got, err := r.Recommend("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, titlesOf(got))
}

func TestRecommend_DuplicateTitleUsesFirstRow(t *testing.T) {
	r := New(newArtifacts(t, []string{"Heat", "Up", "Heat"}, [][]float64{
		{1, 0.1, 0.9},
		{0.1, 1, 0.5},
		{0.9, 0.5, 1},
	}), 5)

	got, err := r.Recommend("Heat")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Movie.ID, "second Heat row is a distinct movie and may be suggested")
	assert.Equal(t, 2, got[1].Movie.ID)
}

func TestNew_DefaultCount(t *testing.T) {
	assert.Equal(t, DefaultCount, New(sixMovies(t), 0).Count())
	assert.Equal(t, 2, New(sixMovies(t), 2).Count())
}
