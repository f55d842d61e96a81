// Package providers contains dependency injection providers for the ReelMatch server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting ReelMatch Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"artifact_db", cfg.Catalog.DatabasePath,
		"catalog_path", cfg.Catalog.MoviesPath,
		"session_store", sessionStoreLabel(cfg.Session.StorePath),
	)

	return log, nil
}

func sessionStoreLabel(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}
