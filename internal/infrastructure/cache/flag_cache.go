package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient создаёт клиента и проверяет соединение.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: не удалось подключиться к %s: %w", addr, err)
	}
	return client, nil
}

// FlagCache хранит флаги системной конфигурации, которые читают другие сервисы.
// Ключи пишутся без префикса: ucard-api читает ключ "approval" напрямую.
type FlagCache struct {
	client redis.UniversalClient
}

func NewFlagCache(client redis.UniversalClient) *FlagCache {
	return &FlagCache{client: client}
}

// Set записывает значение без TTL.
func (c *FlagCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, key, value, 0).Err()
}

func (c *FlagCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
