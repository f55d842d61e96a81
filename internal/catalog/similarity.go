package catalog

import (
	"math"

	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

// Matrix is a dense N×N similarity matrix stored row-major.
// Cell (i, j) is the similarity of movie i to movie j.
type Matrix struct {
	n      int
	scores []float64
}

// NewMatrix copies rows into a matrix. Every row must have len(rows) entries.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, scores: make([]float64, 0, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, domainerrors.Loadf("similarity matrix is not square: row %d has %d columns, want %d", i, len(row), n)
		}
		m.scores = append(m.scores, row...)
	}
	return m, nil
}

// Size returns N.
func (m *Matrix) Size() int {
	return m.n
}

// Row returns the scores of movie i against every movie. The slice aliases the
// matrix and must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.scores[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// At returns the similarity of movie i to movie j.
func (m *Matrix) At(i, j int) float64 {
	return m.scores[i*m.n+j]
}

// NonFinite counts NaN and infinite cells.
func (m *Matrix) NonFinite() int {
	count := 0
	for _, s := range m.scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			count++
		}
	}
	return count
}

// Artifacts pairs a catalog with the similarity matrix aligned to it.
type Artifacts struct {
	Catalog    *Catalog
	Similarity *Matrix
}

// Bind checks that the matrix dimensions match the catalog exactly.
func Bind(c *Catalog, m *Matrix) (*Artifacts, error) {
	if c.Len() != m.Size() {
		return nil, domainerrors.Loadf("similarity matrix is %d×%d but catalog has %d movies", m.Size(), m.Size(), c.Len())
	}
	return &Artifacts{Catalog: c, Similarity: m}, nil
}
