package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisPrefix = "zina:cache:"

// RedisStore shares cached pages between storefront instances. Each page is
// a string key with a TTL; the page numbers of a listing are tracked in a set
// so Invalidate can find them.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to addr and verifies the connection with a ping.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", addr, err)
	}

	return NewRedisStoreFromClient(rdb, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func pageKey(key string, page int) string {
	return redisPrefix + key + ":page:" + strconv.Itoa(page)
}

func pagesKey(key string) string {
	return redisPrefix + key + ":pages"
}

func (s *RedisStore) Get(ctx context.Context, key string, page int) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, pageKey(key, page)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, page int, value []byte) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, pageKey(key, page), value, s.ttl)
	pipe.SAdd(ctx, pagesKey(key), page)
	// The index outlives every page it points to by at most one TTL.
	pipe.Expire(ctx, pagesKey(key), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Invalidate(ctx context.Context, key string) error {
	pages, err := s.rdb.SMembers(ctx, pagesKey(key)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			continue
		}
		keys = append(keys, pageKey(key, n))
	}
	keys = append(keys, pagesKey(key))
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
