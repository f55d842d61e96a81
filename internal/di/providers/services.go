package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/poster"
	"github.com/reelmatch/reelmatch-server/internal/recommend"
	"github.com/reelmatch/reelmatch-server/internal/service"
)

// ProvideRecommendationService provides the recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	artifacts := do.MustInvoke[*catalog.Artifacts](i)
	recommender := do.MustInvoke[*recommend.Recommender](i)
	posters := do.MustInvoke[*poster.Resolver](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	titles := do.MustInvoke[*TitleIndexHandle](i)

	return service.NewRecommendationService(
		artifacts,
		recommender,
		posters,
		sessions.Store,
		titles.TitleIndex,
		log.Component("recommendations").Logger,
		service.WithPosterBudget(cfg.Poster.Budget),
	), nil
}
