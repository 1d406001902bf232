package clientstate

import (
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	redisclient "github.com/angelmondragon/omnicart-backend/pkg/redis"
)

// New picks the Redis store when a client is available and falls back to memory.
func New(client *redisclient.Client, cfg config.ClientStateConfig) Store {
	if client == nil {
		return NewMemoryStore(cfg.TTL)
	}
	return NewRedisStore(client, cfg.TTL)
}
