// Package poster resolves movie ids to poster image URLs.
//
// Every remote answer is memoized for the lifetime of the process, including
// failures, so each id costs at most one upstream call. Callers that only need
// something to render use URL, which collapses every failure to the placeholder.
// Resolve keeps the failure cause for diagnostics.
package poster

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/reelmatch/reelmatch-server/internal/metadata/tmdb"
	"github.com/reelmatch/reelmatch-server/internal/metrics"
)

// Outcome classifies how a poster lookup ended.
type Outcome string

const (
	Found       Outcome = "found"
	NoImagePath Outcome = "no_image_path" // upstream had the movie but no poster_path
	NotFound    Outcome = "not_found"
	BadStatus   Outcome = "bad_status"
	Network     Outcome = "network" // transport failure or timeout
	Decode      Outcome = "decode"
	CircuitOpen Outcome = "circuit_open"
)

// Poster is the result of resolving one movie id.
// URL is the placeholder for every outcome other than Found.
type Poster struct {
	MovieID int
	URL     string
	Outcome Outcome
	Status  int // upstream HTTP status, when one was received
	Err     error
}

// OK reports whether a real poster was found.
func (p Poster) OK() bool {
	return p.Outcome == Found
}

// Fetcher looks up movie details upstream. *tmdb.Client implements it.
type Fetcher interface {
	GetMovie(ctx context.Context, movieID int) (*tmdb.Movie, error)
	ImageURL(posterPath string) string
}

const breakerName = "tmdb"

// Config configures a Resolver.
type Config struct {
	PlaceholderURL string
	Timeout        time.Duration // per remote call

	// Consecutive failures before the breaker opens (default 5), and how long it stays open (default 30s).
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

// Resolver resolves and memoizes posters. It is safe for concurrent use.
type Resolver struct {
	fetcher     Fetcher
	placeholder string
	timeout     time.Duration
	logger      *slog.Logger

	mu   sync.RWMutex
	memo map[int]Poster

	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker[*tmdb.Movie]
}

// NewResolver creates a resolver backed by fetcher.
func NewResolver(fetcher Fetcher, cfg Config, logger *slog.Logger) *Resolver {
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	r := &Resolver{
		fetcher:     fetcher,
		placeholder: cfg.PlaceholderURL,
		timeout:     cfg.Timeout,
		logger:      logger,
		memo:        make(map[int]Poster),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	r.breaker = gobreaker.NewCircuitBreaker[*tmdb.Movie](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A 404 is a definitive answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, tmdb.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("poster circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return r
}

// URL returns the poster URL for movieID, or the placeholder. It never fails.
func (r *Resolver) URL(ctx context.Context, movieID int) string {
	return r.Resolve(ctx, movieID).URL
}

// Resolve returns the structured lookup result for movieID.
//
// Concurrent callers for the same id share one remote call. The shared call is
// detached from ctx so a caller going away cannot poison the memo for others;
// if ctx ends first, that caller alone gets an unmemoized placeholder.
func (r *Resolver) Resolve(ctx context.Context, movieID int) Poster {
	if p, ok := r.cached(movieID); ok {
		metrics.RecordPosterCache(true)
		return p
	}
	metrics.RecordPosterCache(false)

	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(strconv.Itoa(movieID), func() (any, error) {
		// A previous flight may have stored the result after our cache check.
		if p, ok := r.cached(movieID); ok {
			return p, nil
		}
		p := r.fetch(detached, movieID)
		if p.Outcome != CircuitOpen {
			r.store(p)
		}
		return p, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Poster)
	case <-ctx.Done():
		return r.fallback(movieID, Network, 0, ctx.Err())
	}
}

// Len returns the number of memoized ids.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.memo)
}

// BreakerState returns the circuit breaker state: closed, half-open or open.
func (r *Resolver) BreakerState() string {
	return r.breaker.State().String()
}

func (r *Resolver) cached(movieID int) (Poster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.memo[movieID]
	return p, ok
}

// store inserts p unless an entry already exists.
func (r *Resolver) store(p Poster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memo[p.MovieID]; ok {
		return
	}
	r.memo[p.MovieID] = p
	metrics.PosterCacheEntries.Set(float64(len(r.memo)))
}

func (r *Resolver) fetch(ctx context.Context, movieID int) Poster {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	movie, err := r.breaker.Execute(func() (*tmdb.Movie, error) {
		return r.fetcher.GetMovie(ctx, movieID)
	})

	p := r.classify(movieID, movie, err)
	metrics.RecordPosterLookup(string(p.Outcome))

	if p.OK() {
		r.logger.Debug("poster resolved", "movie_id", movieID, "url", p.URL)
	} else {
		r.logger.Warn("poster unavailable, using placeholder",
			"movie_id", movieID,
			"outcome", p.Outcome,
			"status", p.Status,
			"error", p.Err,
		)
	}

	return p
}

func (r *Resolver) classify(movieID int, movie *tmdb.Movie, err error) Poster {
	status := tmdb.StatusOf(err)

	switch {
	case err == nil && movie.PosterPath == "":
		return r.fallback(movieID, NoImagePath, 0, nil)
	case err == nil:
		return Poster{
			MovieID: movieID,
			URL:     r.fetcher.ImageURL(movie.PosterPath),
			Outcome: Found,
		}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return r.fallback(movieID, CircuitOpen, 0, err)
	case errors.Is(err, tmdb.ErrNotFound):
		return r.fallback(movieID, NotFound, status, err)
	case errors.Is(err, tmdb.ErrDecode):
		return r.fallback(movieID, Decode, status, err)
	case status != 0:
		return r.fallback(movieID, BadStatus, status, err)
	default:
		return r.fallback(movieID, Network, 0, err)
	}
}

func (r *Resolver) fallback(movieID int, outcome Outcome, status int, err error) Poster {
	return Poster{
		MovieID: movieID,
		URL:     r.placeholder,
		Outcome: outcome,
		Status:  status,
		Err:     err,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
