package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CredentialBackend keeps one console profile's credentials in a Redis hash.
// Key format: console:credentials:<profile>
type CredentialBackend struct {
	client *redis.Client
	key    string
}

// NewCredentialBackend creates a CredentialBackend wrapping the given Redis client.
func NewCredentialBackend(client *redis.Client, profile string) *CredentialBackend {
	return &CredentialBackend{client: client, key: fmt.Sprintf("console:credentials:%s", profile)}
}

// Load returns every field of the profile hash.
func (b *CredentialBackend) Load(ctx context.Context) (map[string]string, error) {
	values, err := b.client.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	return values, nil
}

func (b *CredentialBackend) Put(ctx context.Context, key, value string) error {
	if err := b.client.HSet(ctx, b.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (b *CredentialBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.HDel(ctx, b.key, key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (b *CredentialBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
