package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/openlibrary"
)

type Config struct {
	Subjects []string
	// PerSubject caps the search results requested for each subject.
	PerSubject int
}

type OpenLibraryClient interface {
	SearchBooks(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
}

type Service struct {
	olClient OpenLibraryClient
	repo     book.Repository
	cfg      Config
}

func NewService(olClient OpenLibraryClient, repo book.Repository, cfg Config) *Service {
	if cfg.PerSubject <= 0 {
		cfg.PerSubject = 20
	}
	return &Service{
		olClient: olClient,
		repo:     repo,
		cfg:      cfg,
	}
}

// Run imports every configured subject through repo.Add. Books already on
// the shelf are counted as duplicates; any other store error stops the run.
func (s *Service) Run(ctx context.Context) (*Run, error) {
	run := &Run{
		StartedAt: time.Now(),
		Subjects:  s.cfg.Subjects,
	}
	defer func() {
		run.FinishedAt = time.Now()
		log.Printf("ingest finished subjects=%s fetched=%d added=%d duplicates=%d skipped=%d duration_ms=%d",
			strings.Join(run.Subjects, ","), run.Fetched, run.Added, run.Duplicates, run.Skipped,
			run.FinishedAt.Sub(run.StartedAt).Milliseconds())
	}()

	for _, subject := range s.cfg.Subjects {
		searchRes, err := s.olClient.SearchBooks(ctx, subject, s.cfg.PerSubject)
		if err != nil {
			return run, fmt.Errorf("search failed for %s: %w", subject, err)
		}
		run.Fetched += len(searchRes.Docs)

		for _, doc := range searchRes.Docs {
			b, ok := toBook(doc)
			if !ok {
				run.Skipped++
				continue
			}

			err := s.repo.Add(ctx, b)
			switch {
			case err == nil:
				run.Added++
			case errors.Is(err, book.ErrDuplicate):
				run.Duplicates++
			default:
				return run, fmt.Errorf("add %q by %q: %w", b.Title, b.Author, err)
			}
		}
	}

	return run, nil
}

func toBook(doc openlibrary.SearchDoc) (book.Book, bool) {
	title := strings.TrimSpace(doc.Title)
	if title == "" || len(doc.AuthorNames) == 0 {
		return book.Book{}, false
	}
	author := strings.TrimSpace(doc.AuthorNames[0])
	if author == "" {
		return book.Book{}, false
	}
	pages := doc.NumberOfPagesMedian
	if pages < 0 {
		pages = 0
	}
	return book.Book{Author: author, Title: title, Pages: pages}, true
}
