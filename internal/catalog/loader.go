package catalog

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

// movieRecord is one entry of the movie list artifact.
type movieRecord struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
}

// scoreRow decodes a JSON array of numbers where null stands for a missing (NaN) score.
type scoreRow []float64

// UnmarshalJSON decodes the row as optional numbers so null cells become NaN instead of zero.
func (r *scoreRow) UnmarshalJSON(data []byte) error {
	var cells []*float64
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("similarity row: %w", err)
	}

	row := make(scoreRow, len(cells))
	for i, cell := range cells {
		if cell == nil {
			row[i] = math.NaN()
			continue
		}
		row[i] = *cell
	}
	*r = row
	return nil
}

// LoadJSON reads the movie list and similarity matrix artifacts and binds them.
func LoadJSON(moviesPath, similarityPath string, policy DuplicatePolicy) (*Artifacts, error) {
	var records []movieRecord
	if err := decodeFile(moviesPath, &records); err != nil {
		return nil, err
	}

	movies, err := toMovies(records)
	if err != nil {
		return nil, err
	}

	c, err := New(movies, policy)
	if err != nil {
		return nil, err
	}

	var rows []scoreRow
	if err := decodeFile(similarityPath, &rows); err != nil {
		return nil, err
	}

	plain := make([][]float64, len(rows))
	for i, row := range rows {
		plain[i] = row
	}

	m, err := NewMatrix(plain)
	if err != nil {
		return nil, err
	}

	return Bind(c, m)
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path) //#nosec G304 -- artifact paths come from operator configuration
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeLoad, "open artifact %s", path)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeLoad, "decode artifact %s", path)
	}
	return nil
}

func toMovies(records []movieRecord) ([]domain.Movie, error) {
	movies := make([]domain.Movie, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return nil, domainerrors.Loadf("movie at row %d (id %d) has an empty title", i, r.MovieID)
		}
		movies[i] = domain.Movie{ID: r.MovieID, Title: r.Title}
	}
	return movies, nil
}
