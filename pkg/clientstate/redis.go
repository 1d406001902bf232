package clientstate

import (
	"context"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type redisBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	ClientStateKey(sessionID, key string) string
}

// RedisStore keeps client state under oc:client:{session}:{key}.
type RedisStore struct {
	client redisBackend
	ttl    time.Duration
}

// NewRedisStore wraps the shared redis client. ttl <= 0 keeps keys forever.
func NewRedisStore(client redisBackend, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, session string, key Key) (string, bool, error) {
	if err := validSession(session); err != nil {
		return "", false, err
	}
	value, err := s.client.Get(ctx, s.client.ClientStateKey(session, string(key)))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Save(ctx context.Context, session string, key Key, value string) error {
	if err := validSession(session); err != nil {
		return err
	}
	return s.client.Set(ctx, s.client.ClientStateKey(session, string(key)), value, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, session string, keys ...Key) error {
	if err := validSession(session); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		redisKeys = append(redisKeys, s.client.ClientStateKey(session, string(key)))
	}
	return s.client.Del(ctx, redisKeys...)
}
