package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/metadata/tmdb"
	"github.com/reelmatch/reelmatch-server/internal/poster"
)

// TMDBClientHandle wraps the TMDB client with shutdown capability.
type TMDBClientHandle struct {
	*tmdb.Client
}

// Shutdown implements do.Shutdownable.
func (h *TMDBClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideTMDBClient provides the TMDB API client.
func ProvideTMDBClient(i do.Injector) (*TMDBClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := tmdb.New(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Timeout:      cfg.Poster.Timeout,
	}, log.Component("tmdb").WithField("base_url", cfg.TMDB.BaseURL).Logger)
	if err != nil {
		return nil, err
	}

	log.Info("TMDB client initialized", "base_url", cfg.TMDB.BaseURL)

	return &TMDBClientHandle{Client: client}, nil
}

// ProvidePosterResolver provides the memoizing poster resolver.
func ProvidePosterResolver(i do.Injector) (*poster.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	clientHandle := do.MustInvoke[*TMDBClientHandle](i)

	return poster.NewResolver(clientHandle.Client, poster.Config{
		PlaceholderURL: cfg.Poster.PlaceholderURL,
		Timeout:        cfg.Poster.Timeout,
	}, log.Component("poster").Logger), nil
}
