// redis предоставляет реализацию storage.KV на базе Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
)

// DefaultPrefix используется, если prefix пустой.
const DefaultPrefix = "formatter:"

// KV хранит значения строками под ключами prefix+key без TTL.
type KV struct {
	rdb    *goredis.Client
	prefix string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет доступность.
func New(ctx context.Context, redisURL, prefix string) (*KV, error) {
	const op = "storage/redis/New"

	if prefix == "" {
		prefix = DefaultPrefix
	}

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &KV{rdb: rdb, prefix: prefix}, nil
}

func (s *KV) key(k string) string { return s.prefix + k }

func (s *KV) Load(ctx context.Context, key string) (string, error) {
	const op = "storage.redis.Load"

	if key == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *KV) Save(ctx context.Context, key, value string) error {
	const op = "storage.redis.Save"

	if key == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *KV) Close() error { return s.rdb.Close() }

// Проверка выполнения контракта верхнего уровня.
var _ storage.KV = (*KV)(nil)
