package book

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrLoad        = errors.New("book: load failed")
	ErrDuplicate   = errors.New("book: duplicate book")
	ErrConflict    = errors.New("book: title conflict")
	ErrPersistence = errors.New("book: persistence failed")
)

// Book represents a book entity. Author and Title together form its identity.
type Book struct {
	Author string `json:"author" xml:"author"`
	Title  string `json:"title" xml:"title"`
	Pages  int    `json:"pages" xml:"pages"`
}

// SameIdentity reports whether b and other share (author, title) under
// case-insensitive comparison.
func (b Book) SameIdentity(other Book) bool {
	return b.Matches(other.Author, other.Title)
}

// Matches reports whether b has the given author and title, ignoring case.
func (b Book) Matches(author, title string) bool {
	return strings.EqualFold(b.Author, author) && strings.EqualFold(b.Title, title)
}

// Compare orders books by author, then title, using ordinal string comparison.
func Compare(a, b Book) int {
	if c := cmp.Compare(a.Author, b.Author); c != 0 {
		return c
	}
	return cmp.Compare(a.Title, b.Title)
}

// Validate checks the fields a stored book must carry.
func (b Book) Validate() error {
	switch {
	case strings.TrimSpace(b.Author) == "":
		return errors.New("author is empty")
	case strings.TrimSpace(b.Title) == "":
		return errors.New("title is empty")
	case b.Pages < 0:
		return fmt.Errorf("pages is negative (%d)", b.Pages)
	}
	return nil
}

// LoadError is returned when the backing file exists but cannot be parsed
// into a valid collection.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load books from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// DuplicateError is returned by Add when the identity is already taken.
type DuplicateError struct {
	Author string
	Title  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("book %q by %q already exists", e.Title, e.Author)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// ConflictError is returned by Update when the new title collides with
// another book by the same author.
type ConflictError struct {
	Author   string
	OldTitle string
	NewTitle string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot rename %q to %q: %q already has a book with that title", e.OldTitle, e.NewTitle, e.Author)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError is returned when writing the collection to disk fails.
// The in-memory collection is unchanged when it is returned.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save books to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
