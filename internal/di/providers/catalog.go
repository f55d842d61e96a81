package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/recommend"
)

// artifactLoadTimeout bounds reading the SQLite bundle at startup.
const artifactLoadTimeout = time.Minute

// ProvideArtifacts loads the catalog and similarity matrix. Any failure aborts startup.
func ProvideArtifacts(i do.Injector) (*catalog.Artifacts, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i).Component("catalog")

	policy, err := catalog.ParsePolicy(cfg.Catalog.DuplicateTitles)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var artifacts *catalog.Artifacts
	if cfg.Catalog.DatabasePath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), artifactLoadTimeout)
		defer cancel()
		artifacts, err = catalog.LoadSQLite(ctx, cfg.Catalog.DatabasePath, policy)
	} else {
		artifacts, err = catalog.LoadJSON(cfg.Catalog.MoviesPath, cfg.Catalog.SimilarityPath, policy)
	}
	if err != nil {
		return nil, err
	}

	artifacts.Catalog.LogSummary(log.Logger)
	if n := artifacts.Similarity.NonFinite(); n > 0 {
		log.Warn("similarity matrix contains non-finite scores; they rank last", "count", n)
	}
	log.Info("artifacts loaded", "duration", time.Since(start))

	return artifacts, nil
}

// ProvideRecommender provides the nearest-neighbour recommender.
func ProvideRecommender(i do.Injector) (*recommend.Recommender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	artifacts := do.MustInvoke[*catalog.Artifacts](i)

	return recommend.New(artifacts, cfg.Catalog.Count), nil
}
