package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the article detail cache. A failure here is not fatal:
// callers run with a nil client and serve uncached reads.
func InitRedis(addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return rdb, nil
}
