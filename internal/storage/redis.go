package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// KeyPrefix namespaces every key written to Redis.
const KeyPrefix = "ligaconv:"

// Redis stores values as plain Redis strings.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server at redisURL. A value that is not a redis://
// URL is used as a host:port address.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("redis_url", redisURL).Msg("not a redis URL, using it as address")
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Errorf("connecting to redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func redisKey(key string) string {
	return KeyPrefix + key
}

// Get implements Storage.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Errorf("getting %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Storage.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, redisKey(key), value, 0).Err(); err != nil {
		return errors.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Remove implements Storage.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return errors.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Close implements Storage.
func (r *Redis) Close() error {
	return r.client.Close()
}
