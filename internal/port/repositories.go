package port

import (
	"context"

	"github.com/strogmv/blogadmin/internal/domain"
)

// PostRepository defines storage operations for Post. Every read returns
// posts with Categories and Tags loaded.
type PostRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Post, error)
	List(ctx context.Context, titleContains string) ([]domain.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// Create inserts the post and its association rows; it assigns ID.
	Create(ctx context.Context, post *domain.Post) error
	// Update writes title, content and both association sets when the
	// stored version still equals post.Version, then bumps post.Version.
	// A stale or missing row yields a Conflict error.
	Update(ctx context.Context, post *domain.Post) error
	// Delete removes the post and its association rows.
	Delete(ctx context.Context, id uint) error
}

// CategoryRepository is read-only access to category reference data.
type CategoryRepository interface {
	// FindByIDs returns the categories whose id is in ids; unknown ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// TagRepository is read-only access to tag reference data.
type TagRepository interface {
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Tag, error)
	ListAll(ctx context.Context) ([]domain.Tag, error)
}
