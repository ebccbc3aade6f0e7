package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strogmv/blogadmin/internal/domain"
	"github.com/strogmv/blogadmin/internal/port"
)

const (
	postKeyPrefix = "blogadmin:post:"

	fieldData = "data"
	fieldGen  = "gen"
)

// setIfCurrent writes the post only while the generation is still the one
// the reader saw. A missing generation counts as 0.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('HGET', KEYS[1], 'gen') or '0'
if gen ~= ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// PostCache keeps each post in the hash blogadmin:post:{id}: the JSON
// encoded post under "data" and an invalidation counter under "gen".
type PostCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewPostCache(client redis.UniversalClient, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PostCache{client: client, ttl: ttl}
}

var _ port.PostCache = (*PostCache)(nil)

func postKey(id uint) string {
	return postKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

func (c *PostCache) Get(ctx context.Context, id uint) (*domain.Post, uint64, error) {
	vals, err := c.client.HMGet(ctx, postKey(id), fieldData, fieldGen).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("cache get: %w", err)
	}

	var gen uint64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseUint(s, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("cache generation: %w", err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var post domain.Post
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return nil, gen, fmt.Errorf("cache decode: %w", err)
	}
	return &post, gen, nil
}

func (c *PostCache) Set(ctx context.Context, post *domain.Post, generation uint64) error {
	raw, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	err = setIfCurrent.Run(ctx, c.client,
		[]string{postKey(post.ID)},
		strconv.FormatUint(generation, 10), raw, c.ttl.Milliseconds(),
	).Err()
	if err != nil && !stderrors.Is(err, redis.Nil) {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached post and bumps the generation so that
// in-flight readers holding the previous one cannot repopulate it.
func (c *PostCache) Invalidate(ctx context.Context, id uint) error {
	key := postKey(id)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldGen, 1)
		pipe.HDel(ctx, key, fieldData)
		pipe.PExpire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
