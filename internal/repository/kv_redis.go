package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ==================== Redis 实现 ====================

// redisKVStore 基于 Redis 的键值存储
// 多实例部署时共享凭证与同步配置用
type redisKVStore struct {
	client *redis.Client
	prefix string
}

var _ KeyValueStore = (*redisKVStore)(nil)

// NewRedisKVStore 创建 Redis 键值存储
func NewRedisKVStore(client *redis.Client) KeyValueStore {
	return &redisKVStore{client: client, prefix: "storefront:"}
}

func (s *redisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (s *redisKVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *redisKVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
