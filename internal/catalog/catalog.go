// Package catalog holds the immutable movie catalog and its aligned similarity matrix.
//
// Both are loaded once at startup from precomputed artifacts and never mutated afterwards,
// so every method is safe for concurrent use without locking.
package catalog

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

// DuplicatePolicy decides what happens when two catalog rows share a title.
type DuplicatePolicy string

const (
	// FirstMatch keeps every row; title lookups resolve to the earliest one.
	FirstMatch DuplicatePolicy = "first"
	// Reject refuses to load a catalog with repeated titles.
	Reject DuplicatePolicy = "reject"
)

// ParsePolicy converts a configuration value to a DuplicatePolicy.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case FirstMatch, Reject:
		return p, nil
	case "":
		return FirstMatch, nil
	default:
		return "", domainerrors.Configurationf("unknown duplicate title policy %q", s)
	}
}

// Catalog is an ordered, read-only list of movies.
type Catalog struct {
	movies  []domain.Movie
	byTitle map[string]int // first position of each title
	byID    map[int]int
	dupes   int
}

// New builds a catalog from rows in artifact order.
// Duplicate movie ids are always rejected; duplicate titles follow policy.
func New(movies []domain.Movie, policy DuplicatePolicy) (*Catalog, error) {
	c := &Catalog{
		movies:  slices.Clone(movies),
		byTitle: make(map[string]int, len(movies)),
		byID:    make(map[int]int, len(movies)),
	}

	for i, m := range c.movies {
		if prev, ok := c.byID[m.ID]; ok {
			return nil, domainerrors.Loadf("duplicate movie id %d at rows %d and %d", m.ID, prev, i)
		}
		c.byID[m.ID] = i

		if prev, ok := c.byTitle[m.Title]; ok {
			if policy == Reject {
				return nil, domainerrors.Loadf("duplicate title %q at rows %d and %d", m.Title, prev, i)
			}
			c.dupes++
			continue
		}
		c.byTitle[m.Title] = i
	}

	return c, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Movie returns the movie at position i. It panics if i is out of range.
func (c *Catalog) Movie(i int) domain.Movie {
	return c.movies[i]
}

// Movies returns a copy of all movies in catalog order.
func (c *Catalog) Movies() []domain.Movie {
	return slices.Clone(c.movies)
}

// IndexOf returns the position of the first movie with exactly this title.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.byTitle[title]
	return i, ok
}

// IndexOfID returns the position of the movie with this id.
func (c *Catalog) IndexOfID(id int) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}

// DuplicateTitles returns how many rows repeat an earlier title.
func (c *Catalog) DuplicateTitles() int {
	return c.dupes
}

// Titles returns every title in catalog order, duplicates included.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Title
	}
	return titles
}

// SortedTitles returns every title ordered for display in lang, ignoring case and accents.
func (c *Catalog) SortedTitles(lang language.Tag) []string {
	titles := c.Titles()
	collate.New(lang, collate.Loose).SortStrings(titles)
	return titles
}

// LogSummary writes a one-line description of the catalog.
func (c *Catalog) LogSummary(logger *slog.Logger) {
	if c.dupes > 0 {
		logger.Warn("catalog contains duplicate titles; lookups resolve to the first occurrence",
			"movies", c.Len(),
			"duplicates", c.dupes,
		)
		return
	}
	logger.Info("catalog loaded", "movies", c.Len())
}
