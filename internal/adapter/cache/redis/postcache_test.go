package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strogmv/blogadmin/internal/domain"
)

func newTestCache(t *testing.T) (*PostCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPostCache(client, time.Minute), mr
}

func TestPostCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	miss, gen, err := cache.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, miss)
	assert.Zero(t, gen)

	post := &domain.Post{
		ID: 5, Title: "t", Content: "c", Version: 2,
		Created:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Categories: []domain.Category{{ID: 1, Name: "go"}},
		Tags:       []domain.Tag{{ID: 10, Name: "beginner"}},
	}
	require.NoError(t, cache.Set(ctx, post, gen))
	assert.True(t, mr.Exists("blogadmin:post:5"))
	assert.Equal(t, time.Minute, mr.TTL("blogadmin:post:5"))

	got, _, err := cache.Get(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, post.Title, got.Title)
	assert.True(t, post.Created.Equal(got.Created))
	assert.Equal(t, []uint{1}, got.CategoryIDs())
	assert.Equal(t, []uint{10}, got.TagIDs())

	require.NoError(t, cache.Invalidate(ctx, 5))
	assert.Empty(t, mr.HGet("blogadmin:post:5", "data"))
	assert.Equal(t, "1", mr.HGet("blogadmin:post:5", "gen"))

	miss, gen, err = cache.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, miss)
	assert.Equal(t, uint64(1), gen)
}

func TestPostCacheSetAfterInvalidateIsDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	// A reader sees a miss and loads the old post from the database.
	_, readerGen, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	old := &domain.Post{ID: 7, Title: "Hello", Version: 1, Categories: []domain.Category{{ID: 1}}}

	// The update commits and invalidates before the reader writes back.
	require.NoError(t, cache.Invalidate(ctx, 7))
	require.NoError(t, cache.Set(ctx, old, readerGen))

	got, gen, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, mr.HGet("blogadmin:post:7", "data"))

	// A reader that started after the invalidation may fill the entry.
	fresh := &domain.Post{ID: 7, Title: "NEW", Version: 2, Categories: []domain.Category{{ID: 2}}}
	require.NoError(t, cache.Set(ctx, fresh, gen))
	got, _, err = cache.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "NEW", got.Title)
	assert.Equal(t, []uint{2}, got.CategoryIDs())
}

func TestPostCacheCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.HSet("blogadmin:post:9", "data", "{not json")

	_, _, err := cache.Get(context.Background(), 9)
	assert.Error(t, err)
}

func TestPostCacheServerDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, _, err := cache.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.Error(t, cache.Invalidate(context.Background(), 1))
}
