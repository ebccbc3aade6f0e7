package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
	"github.com/strogmv/blogadmin/internal/port"
)

// PostsCached reads single posts through cache and drops the entry after
// a successful write. Cache errors never fail the call.
//
// A post whose invalidation failed is remembered in unsynced and read from
// the base service until a later invalidation succeeds.
type PostsCached struct {
	base  port.Posts
	cache port.PostCache

	mu       sync.Mutex
	unsynced map[uint]struct{}
}

func NewPostsCached(base port.Posts, cache port.PostCache) *PostsCached {
	return &PostsCached{base: base, cache: cache, unsynced: make(map[uint]struct{})}
}

var _ port.Posts = (*PostsCached)(nil)

func (c *PostsCached) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	l := logger.From(ctx).With(slog.Uint64("id", uint64(id)))
	if c.isUnsynced(id) && !c.invalidate(ctx, id) {
		return c.base.GetPost(ctx, id)
	}

	cached, gen, err := c.cache.Get(ctx, id)
	if err != nil {
		l.Warn("post cache read failed", slog.Any("error", err))
		return c.base.GetPost(ctx, id)
	}
	if cached != nil {
		return cached, nil
	}

	post, err := c.base.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, post, gen); err != nil {
		l.Warn("post cache write failed", slog.Any("error", err))
	}
	return post, nil
}

func (c *PostsCached) UpdatePost(ctx context.Context, id uint, req port.UpdatePostRequest) error {
	if err := c.base.UpdatePost(ctx, id, req); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *PostsCached) DeletePost(ctx context.Context, id uint) error {
	if err := c.base.DeletePost(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// invalidate reports whether the cache entry is known to be gone.
func (c *PostsCached) invalidate(ctx context.Context, id uint) bool {
	err := c.cache.Invalidate(ctx, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.unsynced[id] = struct{}{}
		logger.From(ctx).Warn("post cache invalidate failed", slog.Uint64("id", uint64(id)), slog.Any("error", err))
		return false
	}
	delete(c.unsynced, id)
	return true
}

func (c *PostsCached) isUnsynced(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.unsynced[id]
	return ok
}

func (c *PostsCached) ListPosts(ctx context.Context, req port.ListPostsRequest) ([]domain.Post, error) {
	return c.base.ListPosts(ctx, req)
}
func (c *PostsCached) CreatePost(ctx context.Context, req port.CreatePostRequest) (*domain.Post, error) {
	return c.base.CreatePost(ctx, req)
}
func (c *PostsCached) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return c.base.ListCategories(ctx)
}
func (c *PostsCached) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return c.base.ListTags(ctx)
}
