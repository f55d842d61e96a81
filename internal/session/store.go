// Package session persists interactive sessions in Badger.
//
// Sessions live in memory unless a directory is configured. Each write refreshes
// the entry TTL, so a session expires after it has been idle for the TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

const keyPrefix = "session:"

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = domainerrors.NotFound("session not found")

// Store wraps a Badger database holding sessions.
type Store struct {
	db       *badger.DB
	ttl      time.Duration
	logger   *slog.Logger
	inMemory bool
}

// Open opens the session store. An empty path keeps everything in memory.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil // Badger's own logging is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if path == "" {
		logger.Info("session store opened", "mode", "memory", "ttl", ttl)
	} else {
		logger.Info("session store opened", "mode", "disk", "path", path, "ttl", ttl)
	}

	return &Store{db: db, ttl: ttl, logger: logger, inMemory: path == ""}, nil
}

// OpenReadOnly opens an on-disk store for inspection. Writes fail.
func OpenReadOnly(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, domainerrors.Validation("read-only session store needs a path")
	}

	opts := badger.DefaultOptions(path).WithReadOnly(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store read-only: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.logger.Info("closing session store")
	return s.db.Close()
}

// Get returns the session with id, or ErrNotFound.
func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// Save writes sess, replacing any previous version and resetting its TTL.
func (s *Store) Save(_ context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(sess.ID), data).WithTTL(s.ttl))
	})
}

// Delete removes the session with id. Deleting a missing session is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}

// Count returns the number of live sessions.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Each calls fn for every live session in key order until fn returns false.
func (s *Store) Each(ctx context.Context, fn func(*domain.Session) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var sess domain.Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sess)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if !fn(&sess) {
				return nil
			}
		}
		return nil
	})
}

// InMemory reports whether sessions are lost on restart.
func (s *Store) InMemory() bool {
	return s.inMemory
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}
