package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "tasktracker/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyTaskList = "cache:tasks:list"

// TaskCache caches the task list in Redis.
type TaskCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewTaskCache returns a new TaskCache. Keys are namespaced with prefix.
func NewTaskCache(rdb *redis.Client, prefix string, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TaskCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

// GetList returns the cached list or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, c.prefix+keyTaskList).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *TaskCache) SetList(ctx context.Context, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+keyTaskList, b, c.ttl).Err()
}

// Invalidate drops the cached list (cache invalidation on write).
func (c *TaskCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.prefix+keyTaskList).Err()
}
