package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bookshelf/internal/ingest"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var (
		subjects   = flag.String("subjects", getEnv("SEED_SUBJECTS", "fantasy,science_fiction"), "Comma separated Open Library subjects")
		perSubject = flag.Int("limit", 20, "Results requested per subject")
		booksFile  = flag.String("file", os.Getenv("BOOKS_FILE"), "Books file (defaults to books.xml beside the api binary)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookStore, err := store.NewBookFile(*booksFile)
	if err != nil {
		log.Fatalf("Failed to open books file: %v", err)
	}

	client := openlibrary.NewClient(
		getEnv("OPENLIBRARY_USER_AGENT", "bookshelf-seed/1.0"),
		getEnvInt("OPENLIBRARY_RPS", 1),
		getEnvInt("OPENLIBRARY_MAX_RETRIES", 3),
	)

	svc := ingest.NewService(client, bookStore, ingest.Config{
		Subjects:   splitSubjects(*subjects),
		PerSubject: *perSubject,
	})

	log.Printf("Seeding %s from Open Library subjects %s", bookStore.Path(), *subjects)
	run, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Printf("Seed finished in %s: fetched=%d added=%d duplicates=%d skipped=%d",
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond), run.Fetched, run.Added, run.Duplicates, run.Skipped)
}

func splitSubjects(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
