// Package main prints recommendations for a title straight from the artifacts,
// without starting the server.
//
// Usage:
//
//	go run ./cmd/recommend -title "Avatar"
//	TMDB_API_KEY=... go run ./cmd/recommend -title "Avatar" -posters
//	go run ./cmd/recommend -title "Avatar" -posters -env-file .env
//	go run ./cmd/recommend -search "dark knight"
//	go run ./cmd/recommend -export-db resources/artifacts.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/metadata/tmdb"
	"github.com/reelmatch/reelmatch-server/internal/poster"
	"github.com/reelmatch/reelmatch-server/internal/recommend"
	"github.com/reelmatch/reelmatch-server/internal/search"
)

var (
	moviesPath      = flag.String("catalog-path", "", "Movie list artifact (JSON, default: CATALOG_PATH or "+config.DefaultMoviesPath+")")
	similarityPath  = flag.String("similarity-path", "", "Similarity matrix artifact (JSON, default: SIMILARITY_PATH or "+config.DefaultSimilarityPath+")")
	artifactDB      = flag.String("artifact-db", "", "SQLite artifact bundle (overrides the JSON pair, default: ARTIFACT_DB)")
	duplicateTitles = flag.String("duplicate-titles", "", "Duplicate title policy: first or reject (default: CATALOG_DUPLICATE_TITLES or first)")
	count           = flag.Int("count", config.DefaultRecommendations, "Recommendations to print")
	envFile         = flag.String("env-file", config.DefaultEnvFile, "Path to .env file")
	title           = flag.String("title", "", "Title to recommend from")
	withPosters     = flag.Bool("posters", false, "Resolve posters from TMDB (needs TMDB_API_KEY)")
	query           = flag.String("search", "", "Search catalog titles instead of recommending")
	exportDB        = flag.String("export-db", "", "Write the loaded artifacts to a SQLite bundle at this path")
	logLevel        = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("Invalid env file: %v", err)
	}

	logs := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(*logLevel),
		Environment: "development",
	})
	ctx := context.Background()

	policy, err := catalog.ParsePolicy(config.Value(*duplicateTitles, "CATALOG_DUPLICATE_TITLES", config.DuplicateTitlesFirst))
	if err != nil {
		log.Fatalf("Invalid duplicate title policy: %v", err)
	}

	var artifacts *catalog.Artifacts
	if db := config.Value(*artifactDB, "ARTIFACT_DB", ""); db != "" {
		artifacts, err = catalog.LoadSQLite(ctx, db, policy)
	} else {
		artifacts, err = catalog.LoadJSON(
			config.Value(*moviesPath, "CATALOG_PATH", config.DefaultMoviesPath),
			config.Value(*similarityPath, "SIMILARITY_PATH", config.DefaultSimilarityPath),
			policy,
		)
	}
	if err != nil {
		log.Fatalf("Failed to load artifacts: %v", err)
	}
	artifacts.Catalog.LogSummary(logs.Component("catalog").Logger)

	switch {
	case *exportDB != "":
		if err := catalog.WriteSQLite(ctx, *exportDB, artifacts); err != nil {
			log.Fatalf("Failed to export artifacts: %v", err)
		}
		fmt.Printf("Wrote %d movies to %s\n", artifacts.Catalog.Len(), *exportDB)

	case *query != "":
		runSearch(ctx, artifacts, logs)

	case *title != "":
		runRecommend(ctx, artifacts, logs)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runSearch(ctx context.Context, artifacts *catalog.Artifacts, logs *logger.Logger) {
	index, err := search.NewTitleIndex(artifacts.Catalog.Movies(), logs.Component("search").Logger)
	if err != nil {
		log.Fatalf("Failed to build title index: %v", err)
	}
	defer index.Close()

	hits, err := index.Search(ctx, *query, search.DefaultLimit)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		fmt.Println("No matching titles")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tMOVIE ID\tTITLE")
	for _, h := range hits {
		fmt.Fprintf(w, "%.3f\t%d\t%s\n", h.Score, h.MovieID, h.Title)
	}
	w.Flush()
}

func runRecommend(ctx context.Context, artifacts *catalog.Artifacts, logs *logger.Logger) {
	suggestions, err := recommend.New(artifacts, *count).Recommend(*title)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var resolver *poster.Resolver
	if *withPosters {
		resolver = newResolver(logs)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "RANK\tSCORE\tMOVIE ID\tTITLE"
	if resolver != nil {
		header += "\tPOSTER"
	}
	fmt.Fprintln(w, header)

	for _, s := range suggestions {
		line := fmt.Sprintf("%d\t%.4f\t%d\t%s", s.Rank, s.Score, s.Movie.ID, s.Movie.Title)
		if resolver != nil {
			p := resolver.Resolve(ctx, s.Movie.ID)
			line += "\t" + p.URL
			if !p.OK() {
				line += " (" + string(p.Outcome) + ")"
			}
		}
		fmt.Fprintln(w, line)
	}
	w.Flush()
}

func newResolver(logs *logger.Logger) *poster.Resolver {
	apiKey := config.Value("", "TMDB_API_KEY", "")
	if apiKey == "" {
		log.Fatal("TMDB_API_KEY is required for -posters (environment or .env)")
	}

	timeout, err := time.ParseDuration(config.Value("", "POSTER_TIMEOUT", config.DefaultPosterTimeout.String()))
	if err != nil {
		log.Fatalf("Invalid POSTER_TIMEOUT: %v", err)
	}

	client, err := tmdb.New(tmdb.Config{
		APIKey:       apiKey,
		BaseURL:      config.Value("", "TMDB_BASE_URL", config.DefaultTMDBBaseURL),
		ImageBaseURL: config.Value("", "TMDB_IMAGE_BASE_URL", config.DefaultTMDBImageBaseURL),
		Timeout:      timeout,
	}, logs.Component("tmdb").Logger)
	if err != nil {
		log.Fatalf("Failed to create TMDB client: %v", err)
	}

	return poster.NewResolver(client, poster.Config{
		PlaceholderURL: config.Value("", "POSTER_PLACEHOLDER_URL", config.DefaultPlaceholderURL),
		Timeout:        timeout,
	}, logs.Component("poster").Logger)
}
