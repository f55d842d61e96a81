// Package search provides title search over the movie catalog using Bleve.
// The index lives in memory and is built once from the loaded catalog.
package search

import (
	"strconv"

	"github.com/reelmatch/reelmatch-server/internal/domain"
)

// TitleDocument is the indexed form of one catalog row.
type TitleDocument struct {
	Position int
	MovieID  int
	Title    string
}

// docID is the catalog position, which is unique even when titles repeat.
func (d TitleDocument) docID() string {
	return strconv.Itoa(d.Position)
}

// toMap converts the document so field names match the mapping.
func (d TitleDocument) toMap() map[string]any {
	return map[string]any{
		"title":        d.Title,
		"title_simple": d.Title,
		"movie_id":     float64(d.MovieID),
		"position":     float64(d.Position),
	}
}

// documentsFor builds one document per movie, in catalog order.
func documentsFor(movies []domain.Movie) []TitleDocument {
	docs := make([]TitleDocument, len(movies))
	for i, m := range movies {
		docs[i] = TitleDocument{Position: i, MovieID: m.ID, Title: m.Title}
	}
	return docs
}
