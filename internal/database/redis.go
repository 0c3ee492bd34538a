package database

import (
	"context"
	"time"

	"retail-backoffice/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client that serves import progress keys. The
// worker's queue traffic goes through asynq's own connection; this one only
// backs progress polling, so a short ping timeout is enough to decide
// whether redis is reachable at startup.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
