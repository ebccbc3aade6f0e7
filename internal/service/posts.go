package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/pkg/helpers"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
	"github.com/strogmv/blogadmin/internal/port"
)

// PostsImpl implements port.Posts.
type PostsImpl struct {
	PostRepo     port.PostRepository
	CategoryRepo port.CategoryRepository
	TagRepo      port.TagRepository
	reconciler   *Reconciler
	txManager    port.TxManager
	publisher    port.Publisher
	publishWait  time.Duration
	now          func() time.Time
}

const defaultPublishTimeout = 2 * time.Second

// Option customises PostsImpl.
type Option func(*PostsImpl)

// WithPublisher sends domain events after each committed change.
func WithPublisher(p port.Publisher) Option {
	return func(s *PostsImpl) { s.publisher = p }
}

// WithPublishTimeout bounds how long a committed change waits on the event bus.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *PostsImpl) {
		if d > 0 {
			s.publishWait = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *PostsImpl) { s.now = now }
}

func NewPostsImpl(postRepo port.PostRepository, categoryRepo port.CategoryRepository, tagRepo port.TagRepository, txManager port.TxManager, opts ...Option) *PostsImpl {
	s := &PostsImpl{
		PostRepo:     postRepo,
		CategoryRepo: categoryRepo,
		TagRepo:      tagRepo,
		reconciler:   NewReconciler(categoryRepo, tagRepo),
		txManager:    txManager,
		publishWait:  defaultPublishTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ port.Posts = (*PostsImpl)(nil)

func (s *PostsImpl) ListPosts(ctx context.Context, req port.ListPostsRequest) ([]domain.Post, error) {
	if err := helpers.Validate(req); err != nil {
		return nil, errors.Validation(err.Error())
	}
	posts, err := s.PostRepo.List(ctx, req.SearchKey)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostsImpl) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return s.PostRepo.FindByID(ctx, id)
}

func (s *PostsImpl) CreatePost(ctx context.Context, req port.CreatePostRequest) (*domain.Post, error) {
	l := logger.From(ctx).With(slog.String("service", "Posts"), slog.String("method", "CreatePost"))
	l.Debug("Entering method", slog.String("title", req.Title))
	if err := helpers.Validate(req); err != nil {
		l.Warn("Validation failed", slog.Any("error", err))
		return nil, errors.Validation(err.Error())
	}

	post := &domain.Post{
		Title:   req.Title,
		Content: req.Content,
		Created: s.now().UTC(),
		Version: 1,
	}
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.reconciler.Reconcile(ctx, post, req.CategoryIDs, req.TagIDs); err != nil {
			return err
		}
		return s.PostRepo.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	l.Info("post created", slog.Uint64("id", uint64(post.ID)))
	s.publish(ctx, domain.EventPostCreated, domain.PostCreated{
		PostID:      post.ID,
		Title:       post.Title,
		CategoryIDs: post.CategoryIDs(),
		TagIDs:      post.TagIDs(),
	})
	return post, nil
}

func (s *PostsImpl) UpdatePost(ctx context.Context, id uint, req port.UpdatePostRequest) error {
	l := logger.From(ctx).With(slog.String("service", "Posts"), slog.String("method", "UpdatePost"), slog.Uint64("id", uint64(id)))
	l.Debug("Entering method")
	if req.ID != id {
		return errors.Validation(fmt.Sprintf("path id %d does not match body id %d", id, req.ID))
	}
	if err := helpers.Validate(req); err != nil {
		l.Warn("Validation failed", slog.Any("error", err))
		return errors.Validation(err.Error())
	}

	var updated *domain.Post
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.PostRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := s.reconciler.Reconcile(ctx, next, req.CategoryIDs, req.TagIDs); err != nil {
			return err
		}
		next.Title = req.Title
		next.Content = req.Content
		if err := s.PostRepo.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if errors.IsConflict(err) {
		exists, exErr := s.PostRepo.Exists(ctx, id)
		if exErr != nil {
			return fmt.Errorf("check post after conflict: %w", exErr)
		}
		if !exists {
			return errors.NotFound(fmt.Sprintf("post %d does not exist or was already deleted", id))
		}
		l.Warn("concurrent modification", slog.Any("error", err))
		return err
	}
	if err != nil {
		return err
	}

	s.publish(ctx, domain.EventPostUpdated, domain.PostUpdated{
		PostID:      updated.ID,
		Title:       updated.Title,
		Version:     updated.Version,
		CategoryIDs: updated.CategoryIDs(),
		TagIDs:      updated.TagIDs(),
	})
	return nil
}

func (s *PostsImpl) DeletePost(ctx context.Context, id uint) error {
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		exists, err := s.PostRepo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NotFound(fmt.Sprintf("post %d not found", id))
		}
		return s.PostRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, domain.EventPostDeleted, domain.PostDeleted{PostID: id})
	return nil
}

func (s *PostsImpl) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.CategoryRepo.ListAll(ctx)
}

func (s *PostsImpl) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.TagRepo.ListAll(ctx)
}

// publish is best-effort: the change is already committed. It runs with
// its own deadline and survives cancellation of the request.
func (s *PostsImpl) publish(ctx context.Context, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishWait)
	defer cancel()
	ev := domain.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.From(ctx).Warn("event publish failed", slog.String("type", eventType), slog.Any("error", err))
	}
}
