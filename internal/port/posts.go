package port

import (
	"context"

	"github.com/strogmv/blogadmin/internal/domain"
)

// Posts is the blog administration use-case boundary.
type Posts interface {
	ListPosts(ctx context.Context, req ListPostsRequest) ([]domain.Post, error)
	GetPost(ctx context.Context, id uint) (*domain.Post, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*domain.Post, error)
	UpdatePost(ctx context.Context, id uint, req UpdatePostRequest) error
	DeletePost(ctx context.Context, id uint) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// Request DTOs

type ListPostsRequest struct {
	SearchKey string `json:"searchKey" validate:"max=255"`
}

type CreatePostRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Content     string `json:"content" validate:"required,notblank"`
	CategoryIDs []uint `json:"categoryIds"`
	TagIDs      []uint `json:"tagIds"`
}

type UpdatePostRequest struct {
	ID          uint   `json:"id"`
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Content     string `json:"content" validate:"required,notblank"`
	CategoryIDs []uint `json:"categoryIds"`
	TagIDs      []uint `json:"tagIds"`
}
