package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"

	_ "modernc.org/sqlite"
)

// bundleSchema describes the single-file artifact bundle. Scores are stored per row as
// N little-endian float64 values so a 5k-movie matrix stays a few thousand rows.
const bundleSchema = `
CREATE TABLE IF NOT EXISTS movies (
	position INTEGER PRIMARY KEY,
	movie_id INTEGER NOT NULL UNIQUE,
	title    TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS similarity (
	row_index INTEGER PRIMARY KEY,
	scores    BLOB    NOT NULL
);
`

// LoadSQLite reads an artifact bundle written by WriteSQLite (or any tool following the same schema).
func LoadSQLite(ctx context.Context, path string, policy DuplicatePolicy) (*Artifacts, error) {
	// sql.Open would happily create an empty database for a typo'd path.
	if _, err := os.Stat(path); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeLoad, "open artifact bundle %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeLoad, "open artifact bundle %s", path)
	}
	defer db.Close()

	movies, err := readMovies(ctx, db)
	if err != nil {
		return nil, err
	}

	c, err := New(movies, policy)
	if err != nil {
		return nil, err
	}

	rows, err := readSimilarity(ctx, db, len(movies))
	if err != nil {
		return nil, err
	}

	m, err := NewMatrix(rows)
	if err != nil {
		return nil, err
	}

	return Bind(c, m)
}

func readMovies(ctx context.Context, db *sql.DB) ([]domain.Movie, error) {
	rows, err := db.QueryContext(ctx, `SELECT position, movie_id, title FROM movies ORDER BY position`)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeLoad, "query movies")
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		var position int
		var m domain.Movie
		if err := rows.Scan(&position, &m.ID, &m.Title); err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeLoad, "scan movie")
		}
		if position != len(movies) {
			return nil, domainerrors.Loadf("movie positions must be contiguous from 0: expected %d, found %d", len(movies), position)
		}
		if m.Title == "" {
			return nil, domainerrors.Loadf("movie at position %d (id %d) has an empty title", position, m.ID)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeLoad, "iterate movies")
	}
	return movies, nil
}

func readSimilarity(ctx context.Context, db *sql.DB, n int) ([][]float64, error) {
	rows, err := db.QueryContext(ctx, `SELECT row_index, scores FROM similarity ORDER BY row_index`)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeLoad, "query similarity")
	}
	defer rows.Close()

	matrix := make([][]float64, 0, n)
	for rows.Next() {
		var index int
		var blob []byte
		if err := rows.Scan(&index, &blob); err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeLoad, "scan similarity row")
		}
		if index != len(matrix) {
			return nil, domainerrors.Loadf("similarity rows must be contiguous from 0: expected %d, found %d", len(matrix), index)
		}
		if len(blob)%8 != 0 {
			return nil, domainerrors.Loadf("similarity row %d has %d bytes, not a whole number of float64 values", index, len(blob))
		}
		matrix = append(matrix, decodeScores(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeLoad, "iterate similarity")
	}
	return matrix, nil
}

// WriteSQLite stores artifacts as a bundle at path, replacing any existing file.
func WriteSQLite(ctx context.Context, path string, a *Artifacts) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing bundle: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, bundleSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	movieStmt, err := tx.PrepareContext(ctx, `INSERT INTO movies (position, movie_id, title) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare movies: %w", err)
	}
	defer movieStmt.Close()

	scoreStmt, err := tx.PrepareContext(ctx, `INSERT INTO similarity (row_index, scores) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare similarity: %w", err)
	}
	defer scoreStmt.Close()

	for i := range a.Catalog.Len() {
		m := a.Catalog.Movie(i)
		if _, err := movieStmt.ExecContext(ctx, i, m.ID, m.Title); err != nil {
			return fmt.Errorf("insert movie %d: %w", m.ID, err)
		}
		if _, err := scoreStmt.ExecContext(ctx, i, encodeScores(a.Similarity.Row(i))); err != nil {
			return fmt.Errorf("insert similarity row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func encodeScores(row []float64) []byte {
	buf := make([]byte, 8*len(row))
	for i, v := range row {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeScores(blob []byte) []float64 {
	row := make([]float64, len(blob)/8)
	for i := range row {
		row[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return row
}
