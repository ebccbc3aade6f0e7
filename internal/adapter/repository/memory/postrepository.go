// Package memory provides an in-memory implementation of the repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/pkg/errors"
	"github.com/strogmv/blogadmin/internal/port"
)

type PostRepositoryStub struct {
	mu     sync.RWMutex
	data   map[uint]*domain.Post
	nextID uint
}

func NewPostRepositoryStub() *PostRepositoryStub {
	return &PostRepositoryStub{
		data:   make(map[uint]*domain.Post),
		nextID: 1,
	}
}

var _ port.PostRepository = (*PostRepositoryStub)(nil)

func (r *PostRepositoryStub) FindByID(ctx context.Context, id uint) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entity, ok := r.data[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("post %d not found", id))
	}
	return entity.Clone(), nil
}

func (r *PostRepositoryStub) List(ctx context.Context, titleContains string) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(titleContains)
	items := make([]domain.Post, 0, len(r.data))
	for _, item := range r.data {
		if needle != "" && !strings.Contains(strings.ToLower(item.Title), needle) {
			continue
		}
		items = append(items, *item.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *PostRepositoryStub) Exists(ctx context.Context, id uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.data[id]
	return ok, nil
}

func (r *PostRepositoryStub) Create(ctx context.Context, entity *domain.Post) error {
	if entity == nil {
		return fmt.Errorf("entity is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entity.ID = r.nextID
	r.nextID++
	r.data[entity.ID] = entity.Clone()
	return nil
}

func (r *PostRepositoryStub) Update(ctx context.Context, entity *domain.Post) error {
	if entity == nil {
		return fmt.Errorf("entity is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[entity.ID]
	if !ok || stored.Version != entity.Version {
		return errors.Conflict(fmt.Sprintf("post %d was modified concurrently", entity.ID))
	}
	entity.Version++
	entity.Created = stored.Created
	r.data[entity.ID] = entity.Clone()
	return nil
}

func (r *PostRepositoryStub) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return errors.NotFound(fmt.Sprintf("post %d not found", id))
	}
	delete(r.data, id)
	return nil
}
