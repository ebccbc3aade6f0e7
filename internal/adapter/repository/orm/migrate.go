package orm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/strogmv/blogadmin/internal/domain"
)

// Migrate creates or extends the posts, categories and tags tables and
// the post_categories and post_tags join tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&domain.Category{}, &domain.Tag{}, &domain.Post{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
