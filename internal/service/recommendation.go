package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/domain"
	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
	"github.com/reelmatch/reelmatch-server/internal/metrics"
	"github.com/reelmatch/reelmatch-server/internal/poster"
	"github.com/reelmatch/reelmatch-server/internal/recommend"
	"github.com/reelmatch/reelmatch-server/internal/search"
	"github.com/reelmatch/reelmatch-server/internal/validation"
)

// SessionStore persists interactive sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
	Count() (int, error)
}

// PosterResolver maps movie ids to poster results.
type PosterResolver interface {
	Resolve(ctx context.Context, movieID int) poster.Poster
	Len() int
	BreakerState() string
}

// TitleSearcher finds catalog titles matching free text.
type TitleSearcher interface {
	Search(ctx context.Context, q string, limit int) ([]search.Hit, error)
}

// RecommendRequest is the input of a recommendation.
type RecommendRequest struct {
	Title string `json:"title" validate:"notblank,max=500"`
}

// SearchRequest is the input of a title search.
type SearchRequest struct {
	Query string `json:"q" validate:"notblank,max=200"`
	Limit int    `json:"limit" validate:"omitempty,gte=1,lte=50"`
}

// DefaultPosterBudget bounds the total time one request spends resolving posters.
const DefaultPosterBudget = 8 * time.Second

// Option configures a RecommendationService.
type Option func(*RecommendationService)

// WithPosterBudget sets the total time a request may spend resolving posters.
// Posters still unresolved when it runs out render as the placeholder.
func WithPosterBudget(d time.Duration) Option {
	return func(s *RecommendationService) {
		if d > 0 {
			s.posterBudget = d
		}
	}
}

// RecommendationService ties the recommender, poster resolution and sessions together.
type RecommendationService struct {
	artifacts   *catalog.Artifacts
	recommender *recommend.Recommender
	posters     PosterResolver
	sessions    SessionStore
	titles      TitleSearcher
	validator   *validation.Validator
	logger      *slog.Logger
	now         func() time.Time

	posterBudget time.Duration
	nonFinite int // counted once; the matrix never changes
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	artifacts *catalog.Artifacts,
	recommender *recommend.Recommender,
	posters PosterResolver,
	sessions SessionStore,
	titles TitleSearcher,
	logger *slog.Logger,
	opts ...Option,
) *RecommendationService {
	s := &RecommendationService{
		artifacts:   artifacts,
		recommender: recommender,
		posters:     posters,
		sessions:    sessions,
		titles:      titles,
		validator:   validation.New(),
		logger:      logger,
		now:         time.Now,
		nonFinite:   artifacts.Similarity.NonFinite(),

		posterBudget: DefaultPosterBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend computes suggestions for req.Title, resolves their posters in rank
// order and stores the list as the session's latest result.
// An unknown title returns a NotFound error and leaves the session untouched.
func (s *RecommendationService) Recommend(ctx context.Context, sessionID string, req RecommendRequest) (*domain.Session, error) {
	start := time.Now()

	if err := s.validator.Validate(req); err != nil {
		metrics.RecordRecommendation("invalid", time.Since(start))
		return nil, err
	}

	suggestions, err := s.recommender.Recommend(req.Title)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.RecordRecommendation("not_found", time.Since(start))
			s.logger.Info("recommendation for unknown title", "title", req.Title, "session_id", sessionID)
		}
		return nil, err
	}

	recs := s.withPosters(ctx, suggestions)

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Replace(req.Title, recs, s.now())

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "save session")
	}

	metrics.RecordRecommendation("ok", time.Since(start))
	s.logger.Info("recommendation computed",
		"title", req.Title,
		"session_id", sessionID,
		"count", len(recs),
		"duration", time.Since(start),
	)

	return sess, nil
}

// withPosters resolves posters in rank order within the poster budget. Once the
// budget is spent the resolver answers with the placeholder without waiting.
func (s *RecommendationService) withPosters(ctx context.Context, suggestions []recommend.Suggestion) []domain.Recommendation {
	ctx, cancel := context.WithTimeout(ctx, s.posterBudget)
	defer cancel()

	recs := make([]domain.Recommendation, len(suggestions))
	for i, sg := range suggestions {
		p := s.posters.Resolve(ctx, sg.Movie.ID)
		recs[i] = domain.Recommendation{
			Title:     sg.Movie.Title,
			MovieID:   sg.Movie.ID,
			PosterURL: p.URL,
			Score:     domain.Score(sg.Score),
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("poster budget exhausted, remaining posters use the placeholder",
			"budget", s.posterBudget,
			"count", len(recs),
		)
	}
	return recs
}

// Last returns the session's most recent result, or an empty session when
// nothing has been requested yet.
func (s *RecommendationService) Last(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return domain.NewSession("", s.now()), nil
	}
	return s.load(ctx, sessionID)
}

func (s *RecommendationService) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, domainerrors.ErrNotFound):
		return domain.NewSession(sessionID, s.now()), nil
	default:
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load session")
	}
}

// Titles returns every catalog title, in catalog order or collated for display.
func (s *RecommendationService) Titles(sorted bool) []string {
	if sorted {
		return s.artifacts.Catalog.SortedTitles(language.English)
	}
	return s.artifacts.Catalog.Titles()
}

// SearchTitles finds catalog titles matching req.Query.
func (s *RecommendationService) SearchTitles(ctx context.Context, req SearchRequest) ([]search.Hit, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	hits, err := s.titles.Search(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search titles")
	}
	return hits, nil
}

// Poster returns the structured poster result for a catalog movie.
func (s *RecommendationService) Poster(ctx context.Context, movieID int) (poster.Poster, error) {
	if _, ok := s.artifacts.Catalog.IndexOfID(movieID); !ok {
		return poster.Poster{}, domainerrors.NotFoundf("movie %d is not in the catalog", movieID)
	}
	return s.posters.Resolve(ctx, movieID), nil
}

// Health describes the state of each component.
type Health struct {
	Movies          int
	DuplicateTitles int
	NonFiniteScores int
	Recommendations int
	PostersCached   int
	PosterBreaker   string
	Sessions        int
	SessionsErr     error
}

// Health reports component status. Catalog and posters are always available
// once the service exists; the session store may fail independently.
func (s *RecommendationService) Health() Health {
	h := Health{
		Movies:          s.artifacts.Catalog.Len(),
		DuplicateTitles: s.artifacts.Catalog.DuplicateTitles(),
		NonFiniteScores: s.nonFinite,
		Recommendations: s.recommender.Count(),
		PostersCached:   s.posters.Len(),
		PosterBreaker:   s.posters.BreakerState(),
	}
	h.Sessions, h.SessionsErr = s.sessions.Count()
	return h
}
