package orm

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/port"
)

type PostRepository struct {
	DB *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{DB: db}
}

var _ port.PostRepository = (*PostRepository)(nil)

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Categories").Preload("Tags")
}

func (r *PostRepository) FindByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	err := withAssociations(conn(ctx, r.DB)).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("post %d not found", id))
		}
		return nil, mapError("find post", err)
	}
	return &post, nil
}

// escapeLike makes % and _ in user input match literally.
var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace

func (r *PostRepository) List(ctx context.Context, titleContains string) ([]domain.Post, error) {
	q := withAssociations(conn(ctx, r.DB)).Order("id")
	if titleContains != "" {
		pattern := "%" + escapeLike(strings.ToLower(titleContains)) + "%"
		q = q.Where(lowerFunc(r.DB)+`(title) LIKE ? ESCAPE '\'`, pattern)
	}
	posts := make([]domain.Post, 0)
	if err := q.Find(&posts).Error; err != nil {
		return nil, mapError("list posts", err)
	}
	return posts, nil
}

func (r *PostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := conn(ctx, r.DB).Model(&domain.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, mapError("count posts", err)
	}
	return n > 0, nil
}

// Create inserts the post row and its join rows. Category and tag rows are
// reference data and never written here.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	if err := conn(ctx, r.DB).Omit("Categories.*", "Tags.*").Create(post).Error; err != nil {
		return mapError("create post", err)
	}
	return nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	db := conn(ctx, r.DB)
	res := db.Model(&domain.Post{}).
		Where("id = ? AND version = ?", post.ID, post.Version).
		Updates(map[string]any{
			"title":   post.Title,
			"content": post.Content,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return mapError("update post", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.Conflict(fmt.Sprintf("post %d was modified concurrently", post.ID))
	}
	post.Version++

	if err := replaceAssociation(db, post, "Categories", post.Categories, len(post.Categories)); err != nil {
		return err
	}
	return replaceAssociation(db, post, "Tags", post.Tags, len(post.Tags))
}

// replaceAssociation rewrites the join rows for name. The referenced rows
// already exist, so the association upsert resolves to ON CONFLICT DO NOTHING.
func replaceAssociation(db *gorm.DB, post *domain.Post, name string, values any, n int) error {
	assoc := db.Model(post).Association(name)
	var err error
	if n == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(values)
	}
	if err != nil {
		return mapError("replace "+strings.ToLower(name), err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.DB).Select("Categories", "Tags").Delete(&domain.Post{ID: id})
	if res.Error != nil {
		return mapError("delete post", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound(fmt.Sprintf("post %d not found", id))
	}
	return nil
}
