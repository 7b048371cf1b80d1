package cache

import (
	"fmt"

	"visaserbia/config"
)

// New creates a Cache from the loaded configuration.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Type {
	case "local":
		return NewLocalCache(cfg.Path), nil
	case "redis":
		return NewRedisCache(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown cache type: %s (valid: local, redis)", cfg.Type)
	}
}
