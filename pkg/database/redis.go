package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"taskman/configs"
)

// ConnectRedis dials the configured Redis instance. Redis is optional here:
// it only backs the login rate limiter, so callers should skip this entirely
// when cfg.RedisHost is empty.
func ConnectRedis(cfg configs.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: "",
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// RedisStorage adapts a redis client to fiber.Storage so limiter counters
// are shared across replicas instead of living per-process.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.client.Set(context.Background(), key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), key).Err()
}

func (s *RedisStorage) Reset() error {
	return s.client.FlushDB(context.Background()).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
