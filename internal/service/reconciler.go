package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
	"github.com/strogmv/blogadmin/internal/port"
)

// ErrUnknownAssociation is the detail reported when a requested category
// or tag identifier does not exist.
const ErrUnknownAssociation = "unknown category or tag identifier"

// Reconciler resolves requested category and tag identifiers and replaces
// a post's association sets with exactly what was resolved.
type Reconciler struct {
	Categories port.CategoryRepository
	Tags       port.TagRepository
}

func NewReconciler(categories port.CategoryRepository, tags port.TagRepository) *Reconciler {
	return &Reconciler{Categories: categories, Tags: tags}
}

// Reconcile leaves post untouched unless every requested identifier on
// both sides resolves. It does not persist anything; the caller commits
// post in the same unit of work as the lookups.
func (r *Reconciler) Reconcile(ctx context.Context, post *domain.Post, categoryIDs, tagIDs []uint) error {
	wantCategories := distinct(categoryIDs)
	wantTags := distinct(tagIDs)

	categories := []domain.Category{}
	if len(wantCategories) > 0 {
		found, err := r.Categories.FindByIDs(ctx, wantCategories)
		if err != nil {
			return fmt.Errorf("resolve categories: %w", err)
		}
		categories = found
	}

	tags := []domain.Tag{}
	if len(wantTags) > 0 {
		found, err := r.Tags.FindByIDs(ctx, wantTags)
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}
		tags = found
	}

	if len(categories) != len(wantCategories) || len(tags) != len(wantTags) {
		logger.From(ctx).Warn("association reconcile rejected",
			slog.Any("categoryIds", wantCategories), slog.Int("categoriesFound", len(categories)),
			slog.Any("tagIds", wantTags), slog.Int("tagsFound", len(tags)),
		)
		return errors.Validation(ErrUnknownAssociation)
	}

	post.Categories = categories
	post.Tags = tags
	return nil
}

// distinct drops duplicates while keeping first-seen order.
func distinct(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
