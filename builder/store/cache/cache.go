package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Nil is returned by Get when the key does not exist.
const Nil = redis.Nil

type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Close() error
}

type RedisConfig struct {
	Addr     string `comment:"Redis address, e.g. localhost:6379"`
	Username string `comment:"optional, Redis username"`
	Password string `comment:"optional, Redis password"`
	DB       int    `comment:"optional, Redis DB"`
}

type Cache struct {
	core *redis.Client
}

func NewCache(ctx context.Context, cfg RedisConfig) (cache RedisClient, err error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		err = fmt.Errorf("pinging Redis: %w", err)
		return
	}
	cache = &Cache{core: client}
	return
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.core.Get(ctx, key).Result()
}

func (c *Cache) Close() error {
	return c.core.Close()
}
