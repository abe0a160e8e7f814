package book

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks bookshelf/internal/book Repository

// Repository defines the contract for the book collection.
type Repository interface {
	// List returns every book in (author, title) order.
	List(ctx context.Context) []Book
	// Search returns books whose title contains keyword, ignoring case.
	Search(ctx context.Context, keyword string) []Book
	// Add stores a new book. Fails with *DuplicateError or *PersistenceError.
	Add(ctx context.Context, b Book) error
	// Update renames a book. Returns false when (author, oldTitle) is unknown.
	Update(ctx context.Context, author, oldTitle, newTitle string) (bool, error)
	// Reload re-reads the collection from its backing file.
	Reload(ctx context.Context) error
}
