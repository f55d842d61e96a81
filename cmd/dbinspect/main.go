// Package main prints the contents of an on-disk session store.
//
// Usage:
//
//	SESSION_STORE_PATH=~/reelmatch/sessions go run ./cmd/dbinspect
//	go run ./cmd/dbinspect -limit 20
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/reelmatch/reelmatch-server/internal/domain"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/session"
)

var limit = flag.Int("limit", 10, "Sessions to print in full")

func main() {
	flag.Parse()

	dbPath := os.Getenv("SESSION_STORE_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/reelmatch/sessions")
	}

	store, err := session.OpenReadOnly(dbPath, logger.Discard().Logger)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer store.Close()

	fmt.Println("=== Session Store Inspection ===")
	fmt.Printf("Path: %s\n\n", dbPath)

	total := 0
	withList := 0
	var oldest, newest time.Time
	titles := make(map[string]int)

	err = store.Each(context.Background(), func(sess *domain.Session) bool {
		total++
		if sess.HasRecommendations() {
			withList++
			titles[sess.SelectedTitle]++
		}
		if oldest.IsZero() || sess.UpdatedAt.Before(oldest) {
			oldest = sess.UpdatedAt
		}
		if sess.UpdatedAt.After(newest) {
			newest = sess.UpdatedAt
		}

		if total <= *limit {
			printSession(sess)
		}
		return true
	})
	if err != nil {
		log.Fatalf("Error iterating session store: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total sessions: %d\n", total)
	fmt.Printf("Sessions with recommendations: %d\n", withList)
	fmt.Printf("Distinct selected titles: %d\n", len(titles))
	if total > 0 {
		fmt.Printf("Oldest update: %s\n", oldest.Format(time.RFC3339))
		fmt.Printf("Newest update: %s\n", newest.Format(time.RFC3339))
	}
}

func printSession(sess *domain.Session) {
	fmt.Printf("Session: %s\n", sess.ID)
	fmt.Printf("  Updated: %s\n", sess.UpdatedAt.Format(time.RFC3339))
	if !sess.HasRecommendations() {
		fmt.Println("  (no recommendations)")
		fmt.Println()
		return
	}

	fmt.Printf("  Selected: %s\n", sess.SelectedTitle)
	for i, r := range sess.Recommendations {
		score := "n/a"
		if r.Score.Finite() {
			score = fmt.Sprintf("%.3f", float64(r.Score))
		}
		fmt.Printf("    [%d] %s (id %d, score %s)\n", i+1, r.Title, r.MovieID, score)
	}
	fmt.Println()
}
