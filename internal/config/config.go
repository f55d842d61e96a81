// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainerrors "github.com/reelmatch/reelmatch-server/internal/errors"
)

// DefaultPlaceholderURL is shown whenever a poster cannot be resolved.
const DefaultPlaceholderURL = "https://img.freepik.com/free-vector/cinema-realistic-poster-with-illuminated-bucket-popcorn-drink-3d-glasses-reel-tickets-blue-background-with-tapes-vector-illustration_1284-77070.jpg"

// Defaults shared by the server and the command-line tools.
const (
	DefaultEnvFile          = ".env"
	DefaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	DefaultTMDBImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultPosterTimeout    = 10 * time.Second
	DefaultPosterBudget     = 8 * time.Second
	DefaultRecommendations  = 5
)

// Default artifact locations, relative to the working directory.
var (
	DefaultMoviesPath     = filepath.Join("resources", "movie_list.json")
	DefaultSimilarityPath = filepath.Join("resources", "similarity.json")
)

// Duplicate title policies for the catalog loader.
const (
	DuplicateTitlesFirst  = "first"
	DuplicateTitlesReject = "reject"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Catalog CatalogConfig
	TMDB    TMDBConfig
	Poster  PosterConfig
	Session SessionConfig
	Server  ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// CatalogConfig locates the precomputed catalog and similarity artifacts.
type CatalogConfig struct {
	MoviesPath      string // JSON movie list
	SimilarityPath  string // JSON similarity matrix
	DatabasePath    string // SQLite bundle; takes precedence over the JSON pair when set
	DuplicateTitles string // "first" or "reject"
	Count           int    // Recommendations per request (default: 5)
}

// TMDBConfig holds The Movie Database API configuration.
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
}

// PosterConfig holds poster resolution settings.
type PosterConfig struct {
	PlaceholderURL string
	Timeout        time.Duration // per remote call
	Budget         time.Duration // all lookups of one request together
}

// SessionConfig holds interactive session settings.
type SessionConfig struct {
	StorePath string        // Empty keeps sessions in memory
	TTL       time.Duration // Idle lifetime of a session
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load parses args into fs and builds the configuration. Split out from LoadConfig for tests.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	moviesPath := fs.String("catalog-path", "", "Path to the movie list artifact (JSON)")
	similarityPath := fs.String("similarity-path", "", "Path to the similarity matrix artifact (JSON)")
	artifactDB := fs.String("artifact-db", "", "Path to a SQLite artifact bundle (overrides the JSON pair)")
	duplicateTitles := fs.String("duplicate-titles", "", "Duplicate title policy: first or reject")
	count := fs.String("recommendations", "", "Recommendations per request (default: 5)")

	apiKey := fs.String("tmdb-api-key", "", "TMDB API key")
	posterTimeout := fs.String("poster-timeout", "", "Poster lookup timeout (default: 10s)")
	posterBudget := fs.String("poster-budget", "", "Total poster lookup time per request (default: 8s)")

	sessionPath := fs.String("session-store-path", "", "Directory for the session store (default: in-memory)")
	sessionTTL := fs.String("session-ttl", "", "Session idle lifetime (default: 24h)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	envFile := fs.String("env-file", DefaultEnvFile, "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeConfiguration, "parse flags")
	}

	// Missing .env file is fine; a malformed one is not.
	if err := LoadEnvFile(*envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			MoviesPath:      getConfigValue(*moviesPath, "CATALOG_PATH", DefaultMoviesPath),
			SimilarityPath:  getConfigValue(*similarityPath, "SIMILARITY_PATH", DefaultSimilarityPath),
			DatabasePath:    getConfigValue(*artifactDB, "ARTIFACT_DB", ""),
			DuplicateTitles: strings.ToLower(getConfigValue(*duplicateTitles, "CATALOG_DUPLICATE_TITLES", DuplicateTitlesFirst)),
			Count:           getIntConfigValue(*count, "RECOMMENDATION_COUNT", DefaultRecommendations),
		},
		TMDB: TMDBConfig{
			APIKey:       strings.TrimSpace(getConfigValue(*apiKey, "TMDB_API_KEY", "")),
			BaseURL:      getConfigValue("", "TMDB_BASE_URL", DefaultTMDBBaseURL),
			ImageBaseURL: getConfigValue("", "TMDB_IMAGE_BASE_URL", DefaultTMDBImageBaseURL),
		},
		Poster: PosterConfig{
			PlaceholderURL: getConfigValue("", "POSTER_PLACEHOLDER_URL", DefaultPlaceholderURL),
		},
		Session: SessionConfig{
			StorePath: getConfigValue(*sessionPath, "SESSION_STORE_PATH", ""),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	durations := []struct {
		flagValue, envKey, def, name string
		dst                          *time.Duration
	}{
		{*posterTimeout, "POSTER_TIMEOUT", DefaultPosterTimeout.String(), "poster timeout", &cfg.Poster.Timeout},
		{*posterBudget, "POSTER_BUDGET", DefaultPosterBudget.String(), "poster budget", &cfg.Poster.Budget},
		{*sessionTTL, "SESSION_TTL", "24h", "session ttl", &cfg.Session.TTL},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeConfiguration, "invalid %s %q", d.name, raw)
		}
		*d.dst = parsed
	}

	if cfg.Session.StorePath != "" {
		expanded, err := expandPath(cfg.Session.StorePath)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeConfiguration, "invalid session store path")
		}
		cfg.Session.StorePath = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return domainerrors.Configurationf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return domainerrors.Configurationf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.TMDB.APIKey == "" {
		return domainerrors.Configuration("TMDB_API_KEY is required")
	}

	for name, raw := range map[string]string{
		"TMDB_BASE_URL":          c.TMDB.BaseURL,
		"TMDB_IMAGE_BASE_URL":    c.TMDB.ImageBaseURL,
		"POSTER_PLACEHOLDER_URL": c.Poster.PlaceholderURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return domainerrors.Configurationf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	if c.Catalog.DatabasePath == "" && (c.Catalog.MoviesPath == "" || c.Catalog.SimilarityPath == "") {
		return domainerrors.Configuration("either ARTIFACT_DB or both CATALOG_PATH and SIMILARITY_PATH are required")
	}

	if c.Catalog.DuplicateTitles != DuplicateTitlesFirst && c.Catalog.DuplicateTitles != DuplicateTitlesReject {
		return domainerrors.Configurationf("invalid duplicate title policy: %q (must be first or reject)", c.Catalog.DuplicateTitles)
	}

	if c.Catalog.Count < 1 || c.Catalog.Count > 20 {
		return domainerrors.Configurationf("recommendation count must be between 1 and 20, got %d", c.Catalog.Count)
	}

	if c.Poster.Timeout <= 0 {
		return domainerrors.Configuration("poster timeout must be positive")
	}

	if c.Poster.Budget <= 0 {
		return domainerrors.Configuration("poster budget must be positive")
	}

	// The response still has to be written after the posters are resolved.
	if c.Server.WriteTimeout > 0 && c.Poster.Budget >= c.Server.WriteTimeout {
		return domainerrors.Configurationf("POSTER_BUDGET (%s) must be shorter than SERVER_WRITE_TIMEOUT (%s)",
			c.Poster.Budget, c.Server.WriteTimeout)
	}

	if c.Session.TTL <= 0 {
		return domainerrors.Configuration("session ttl must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// Value resolves a setting outside Load with the same precedence: flag, then
// environment (including a loaded .env file), then default.
func Value(flagValue, envKey, defaultValue string) string {
	return getConfigValue(flagValue, envKey, defaultValue)
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadEnvFile copies KEY=value lines from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := loadEnvFile(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return domainerrors.Wrapf(err, domainerrors.CodeConfiguration, "load %s", path)
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
