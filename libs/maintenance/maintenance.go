// Package maintenance answers whether write operations are currently blocked
// for a maintenance window.
package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/boschglobal/bosch-pt-refinemysite-backend-sub010/libs/config"
)

// Checker reports whether writes are blocked.
type Checker interface {
	Blocked(ctx context.Context) (bool, error)
}

// StaticFlag is a Checker fixed at startup.
type StaticFlag bool

func (f StaticFlag) Blocked(context.Context) (bool, error) {
	return bool(f), nil
}

// RedisFlag reads the flag from a redis key so every instance of a service
// sees the same value. A missing key means writes are allowed.
type RedisFlag struct {
	client redis.UniversalClient
	key    string
}

func NewRedisFlag(client redis.UniversalClient, key string) *RedisFlag {
	return &RedisFlag{client: client, key: key}
}

func (f *RedisFlag) Blocked(ctx context.Context) (bool, error) {
	v, err := f.client.Get(ctx, f.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read maintenance flag %q: %w", f.key, err)
	}
	return config.IsTruthy(v), nil
}

// Set toggles the flag. Operators normally do this with redis-cli; it is
// exposed for tooling and tests.
func (f *RedisFlag) Set(ctx context.Context, blocked bool) error {
	if !blocked {
		return f.client.Del(ctx, f.key).Err()
	}
	return f.client.Set(ctx, f.key, "true", 0).Err()
}

func ReadyCheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis not configured")
		}
		return client.Ping(ctx).Err()
	}
}
