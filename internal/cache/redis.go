package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
