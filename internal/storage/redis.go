package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tasktracker:"

// RedisBackend keeps each collection under one string key. SET replaces the
// value atomically, so readers see either the old or the new document.
//
// The client is owned by the caller; Close does not close it.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBackend returns a backend storing keys as <prefix>collection:<name>.
func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + "collection:" + name
}

func (b *RedisBackend) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, b.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *RedisBackend) Save(ctx context.Context, name string, data []byte) error {
	return b.rdb.Set(ctx, b.key(name), data, 0).Err()
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error { return nil }
