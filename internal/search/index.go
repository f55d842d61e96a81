package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/reelmatch/reelmatch-server/internal/domain"
)

// Limits for a single search.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Hit is one matching catalog title.
type Hit struct {
	Position int     `json:"position"`
	MovieID  int     `json:"movie_id"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
}

// TitleIndex is an in-memory full-text index of catalog titles.
// The catalog never changes after load, so the index is read-only once built
// and safe for concurrent use.
type TitleIndex struct {
	index  bleve.Index
	logger *slog.Logger
}

// NewTitleIndex builds an index over movies.
func NewTitleIndex(movies []domain.Movie, logger *slog.Logger) (*TitleIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	ti := &TitleIndex{index: index, logger: logger}
	if err := ti.indexDocuments(documentsFor(movies)); err != nil {
		_ = index.Close()
		return nil, err
	}

	logger.Info("title index built", "documents", len(movies))
	return ti, nil
}

// indexDocuments adds docs in chunks to keep batch memory bounded.
func (ti *TitleIndex) indexDocuments(docs []TitleDocument) error {
	const batchSize = 500

	for chunk := range slices.Chunk(docs, batchSize) {
		batch := ti.index.NewBatch()
		for _, doc := range chunk {
			if err := batch.Index(doc.docID(), doc.toMap()); err != nil {
				return fmt.Errorf("batch index %q: %w", doc.Title, err)
			}
		}
		if err := ti.index.Batch(batch); err != nil {
			return fmt.Errorf("execute batch: %w", err)
		}
	}
	return nil
}

// Close releases the index.
func (ti *TitleIndex) Close() error {
	return ti.index.Close()
}

// DocumentCount returns the number of indexed titles.
func (ti *TitleIndex) DocumentCount() (uint64, error) {
	return ti.index.DocCount()
}

// Search returns titles matching q, best first. Equal scores keep catalog order.
// limit is clamped to [1, MaxLimit]; zero means DefaultLimit.
func (ti *TitleIndex) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Hit{}, nil
	}

	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	req := bleve.NewSearchRequestOptions(buildTitleQuery(q), limit, 0, false)
	req.SortBy([]string{"-_score", "position"})
	req.Fields = []string{"title", "movie_id", "position"}

	res, err := ti.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if t, ok := h.Fields["title"].(string); ok {
			hit.Title = t
		}
		if id, ok := h.Fields["movie_id"].(float64); ok {
			hit.MovieID = int(id)
		}
		if pos, ok := h.Fields["position"].(float64); ok {
			hit.Position = int(pos)
		}
		hits = append(hits, hit)
	}

	ti.logger.Debug("title search", "query", q, "hits", len(hits), "took", res.Took)
	return hits, nil
}

// buildTitleQuery combines stemmed, fuzzy and prefix matching.
func buildTitleQuery(q string) query.Query {
	stemmed := bleve.NewMatchQuery(q)
	stemmed.SetField("title")
	stemmed.SetBoost(3.0)

	// Typo tolerance, per analysed term.
	fuzzy := bleve.NewMatchQuery(q)
	fuzzy.SetField("title_simple")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(1.0)

	queries := []query.Query{stemmed, fuzzy}

	// Autocomplete on the word being typed.
	words := strings.Fields(strings.ToLower(q))
	if last := words[len(words)-1]; len(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("title_simple")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
