package port

import (
	"context"

	"github.com/strogmv/blogadmin/internal/domain"
)

// PostCache is a read-through cache for single posts.
//
// Get reports a miss with a nil post and always returns the entry's
// generation. Set stores the post only if no Invalidate happened since that
// generation was read, so a reader that loaded the post before a write
// committed cannot put the old copy back.
type PostCache interface {
	Get(ctx context.Context, id uint) (*domain.Post, uint64, error)
	Set(ctx context.Context, post *domain.Post, generation uint64) error
	Invalidate(ctx context.Context, id uint) error
}
