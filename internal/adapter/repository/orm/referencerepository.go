package orm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/port"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

var _ port.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(ctx, r.DB).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, mapError("find categories", err)
	}
	return out, nil
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0)
	if err := conn(ctx, r.DB).Order("id").Find(&out).Error; err != nil {
		return nil, mapError("list categories", err)
	}
	return out, nil
}

type TagRepository struct {
	DB *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

var _ port.TagRepository = (*TagRepository)(nil)

func (r *TagRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(ctx, r.DB).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, mapError("find tags", err)
	}
	return out, nil
}

func (r *TagRepository) ListAll(ctx context.Context) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0)
	if err := conn(ctx, r.DB).Order("id").Find(&out).Error; err != nil {
		return nil, mapError("list tags", err)
	}
	return out, nil
}

// SeedReferenceData inserts categories and tags, skipping names that
// already exist. It returns how many rows were written.
func SeedReferenceData(ctx context.Context, db *gorm.DB, categories []domain.Category, tags []domain.Tag) (int64, error) {
	var written int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}
		if len(categories) > 0 {
			res := tx.Clauses(ignore).Create(&categories)
			if res.Error != nil {
				return res.Error
			}
			written += res.RowsAffected
		}
		if len(tags) > 0 {
			res := tx.Clauses(ignore).Create(&tags)
			if res.Error != nil {
				return res.Error
			}
			written += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, mapError("seed reference data", err)
	}
	return written, nil
}
