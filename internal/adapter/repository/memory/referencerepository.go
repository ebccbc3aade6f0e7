package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/port"
)

type CategoryRepositoryStub struct {
	mu   sync.RWMutex
	data map[uint]domain.Category
}

// NewCategoryRepositoryStub seeds the store with the given categories.
func NewCategoryRepositoryStub(seed ...domain.Category) *CategoryRepositoryStub {
	r := &CategoryRepositoryStub{data: make(map[uint]domain.Category, len(seed))}
	for _, c := range seed {
		r.data[c.ID] = c
	}
	return r
}

var _ port.CategoryRepository = (*CategoryRepositoryStub)(nil)

func (r *CategoryRepositoryStub) FindByIDs(ctx context.Context, ids []uint) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.data[id]; ok {
			res = append(res, c)
		}
	}
	return res, nil
}

func (r *CategoryRepositoryStub) ListAll(ctx context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Category, 0, len(r.data))
	for _, c := range r.data {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// Put adds or replaces a category.
func (r *CategoryRepositoryStub) Put(c domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[c.ID] = c
}

type TagRepositoryStub struct {
	mu   sync.RWMutex
	data map[uint]domain.Tag
}

func NewTagRepositoryStub(seed ...domain.Tag) *TagRepositoryStub {
	r := &TagRepositoryStub{data: make(map[uint]domain.Tag, len(seed))}
	for _, t := range seed {
		r.data[t.ID] = t
	}
	return r
}

var _ port.TagRepository = (*TagRepositoryStub)(nil)

func (r *TagRepositoryStub) FindByIDs(ctx context.Context, ids []uint) ([]domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.data[id]; ok {
			res = append(res, t)
		}
	}
	return res, nil
}

func (r *TagRepositoryStub) ListAll(ctx context.Context) ([]domain.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]domain.Tag, 0, len(r.data))
	for _, t := range r.data {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *TagRepositoryStub) Put(t domain.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[t.ID] = t
}
