// Package di provides dependency injection configuration for the ReelMatch server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/di/providers"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/poster"
	"github.com/reelmatch/reelmatch-server/internal/recommend"
	"github.com/reelmatch/reelmatch-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Artifacts
	do.Provide(injector, providers.ProvideArtifacts)
	do.Provide(injector, providers.ProvideRecommender)
	do.Provide(injector, providers.ProvideTitleIndex)

	// Posters
	do.Provide(injector, providers.ProvideTMDBClient)
	do.Provide(injector, providers.ProvidePosterResolver)

	// Sessions
	do.Provide(injector, providers.ProvideSessionStore)

	// Business services
	do.Provide(injector, providers.ProvideRecommendationService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Artifacts load eagerly so a bad
// catalog or matrix fails startup before the server listens.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*catalog.Artifacts](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*recommend.Recommender](injector)
	if _, err := do.Invoke[*providers.TitleIndexHandle](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*providers.TMDBClientHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*poster.Resolver](injector)

	if _, err := do.Invoke[*providers.SessionStoreHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.RecommendationService](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
