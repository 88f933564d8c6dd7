package session

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// RedisStore shares one login across several terminals pointed at the same
// redis instance. The token is the sole value; expiry is still discovered
// through a 401 from the API, the TTL only bounds how long a dead terminal
// leaves a credential behind.
type RedisStore struct {
	notifier

	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Token() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		// redis.Nil and transport errors both read as "logged out"; the
		// gateway turns that into Unauthenticated before any API call.
		return "", false
	}

	return token, token != ""
}

func (s *RedisStore) SetToken(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return apperrors.InternalError("Failed to store session token").WithError(err)
	}

	s.notify(EventLogin)

	return nil
}

func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	deleted, err := s.client.Del(ctx, s.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return apperrors.InternalError("Failed to clear session token").WithError(err)
	}

	if deleted > 0 {
		s.notify(EventLogout)
	}

	return nil
}
