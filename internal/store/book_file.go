package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"bookshelf/internal/book"

	"github.com/google/renameio/v2"
)

const defaultFileName = "books.xml"

var _ book.Repository = (*BookFile)(nil)

// BookFile is a book.Repository held in memory and written through to a
// single file. Every mutation rewrites the whole file via temp file + rename.
type BookFile struct {
	mu    sync.RWMutex
	path  string
	codec Codec
	books []book.Book
}

// DefaultPath returns books.xml next to the running executable.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return defaultFileName
	}
	return filepath.Join(filepath.Dir(exe), defaultFileName)
}

// NewBookFile loads the collection stored at path. A missing file yields an
// empty collection; a file that cannot be parsed yields a *book.LoadError.
func NewBookFile(path string) (*BookFile, error) {
	if path == "" {
		path = DefaultPath()
	}
	s := &BookFile{path: path, codec: CodecFor(path)}
	books, err := s.load()
	if err != nil {
		return nil, err
	}
	s.books = books
	return s, nil
}

// Path returns the backing file.
func (s *BookFile) Path() string {
	return s.path
}

func (s *BookFile) load() ([]book.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []book.Book{}, nil
		}
		return nil, &book.LoadError{Path: s.path, Err: err}
	}

	books, err := s.codec.Decode(data)
	if err != nil {
		return nil, &book.LoadError{Path: s.path, Err: err}
	}
	for i, b := range books {
		if err := b.Validate(); err != nil {
			return nil, &book.LoadError{Path: s.path, Err: fmt.Errorf("record %d: %w", i+1, err)}
		}
		for _, prev := range books[:i] {
			if prev.SameIdentity(b) {
				return nil, &book.LoadError{Path: s.path, Err: fmt.Errorf("record %d: %w", i+1, &book.DuplicateError{Author: b.Author, Title: b.Title})}
			}
		}
	}
	if books == nil {
		books = []book.Book{}
	}
	slices.SortFunc(books, book.Compare)
	return books, nil
}

// commit sorts next, writes it out and only then makes it the live
// collection. Callers hold the write lock.
func (s *BookFile) commit(next []book.Book) error {
	slices.SortFunc(next, book.Compare)
	data, err := s.codec.Encode(next)
	if err != nil {
		return &book.PersistenceError{Path: s.path, Err: err}
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return &book.PersistenceError{Path: s.path, Err: err}
	}
	s.books = next
	return nil
}

func (s *BookFile) indexOf(author, title string) int {
	return slices.IndexFunc(s.books, func(b book.Book) bool {
		return b.Matches(author, title)
	})
}

func (s *BookFile) List(ctx context.Context) []book.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.books)
}

func (s *BookFile) Search(ctx context.Context, keyword string) []book.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(keyword)
	matches := []book.Book{}
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), needle) {
			matches = append(matches, b)
		}
	}
	return matches
}

func (s *BookFile) Add(ctx context.Context, b book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(b.Author, b.Title) >= 0 {
		return &book.DuplicateError{Author: b.Author, Title: b.Title}
	}

	next := make([]book.Book, len(s.books), len(s.books)+1)
	copy(next, s.books)
	if err := s.commit(append(next, b)); err != nil {
		return err
	}
	log.Printf("bookstore added author=%q title=%q pages=%d total=%d", b.Author, b.Title, b.Pages, len(s.books))
	return nil
}

// Update renames the book identified by (author, oldTitle). The book itself
// is excluded from the conflict scan, so renaming to its own title succeeds.
func (s *BookFile) Update(ctx context.Context, author, oldTitle, newTitle string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(author, oldTitle)
	if idx < 0 {
		return false, nil
	}
	for i, b := range s.books {
		if i != idx && b.Matches(author, newTitle) {
			return false, &book.ConflictError{Author: author, OldTitle: oldTitle, NewTitle: newTitle}
		}
	}

	next := slices.Clone(s.books)
	next[idx].Title = newTitle
	if err := s.commit(next); err != nil {
		return false, err
	}
	log.Printf("bookstore updated author=%q old_title=%q new_title=%q", author, oldTitle, newTitle)
	return true, nil
}

// Reload replaces the in-memory collection with the file contents. On
// failure the previous collection is kept.
func (s *BookFile) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.load()
	if err != nil {
		return err
	}
	s.books = books
	log.Printf("bookstore reloaded path=%s total=%d", s.path, len(books))
	return nil
}
