// Package repository is the content store: posts live as <id>.md files in a
// single directory, one file per post.
//
// The store is built for a single writer. Every operation re-reads the
// filesystem and nothing is cached between calls. Concurrent updates of the
// same id are not serialized; the last write wins.
package repository

import (
	"context"

	"github.com/blog-content-api/internal/models"
)

// PostRepository defines the interface for post storage operations.
// Errors carry an apperr kind: NotFound, Validation, Conflict or Internal.
type PostRepository interface {
	ListIDs(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ReadRaw(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]*models.Post, error)
	Create(ctx context.Context, req *models.CreatePostRequest) (string, error)
	Update(ctx context.Context, id string, req *models.UpdatePostRequest) error
	Delete(ctx context.Context, id string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Post PostRepository
}

// New creates all repositories on top of the file store
func New(store *FileStore) *Repositories {
	return &Repositories{
		Post: store,
	}
}
