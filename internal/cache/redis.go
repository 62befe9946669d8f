package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/pkg/config"
)

const verdictHashKey = "curator:verdicts"

// RedisStore keeps verdicts in one hash, field per username, JSON values.
// Useful when several workers share a cache; the file store stays the default
// for single-machine runs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context) (map[string]models.Verdict, error) {
	fields, err := s.client.HGetAll(ctx, verdictHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load verdicts from redis: %w", err)
	}

	verdicts := make(map[string]models.Verdict, len(fields))
	for username, raw := range fields {
		var v models.Verdict
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("corrupt verdict for %s: %w", username, err)
		}
		verdicts[username] = v
	}
	return verdicts, nil
}

func (s *RedisStore) Save(ctx context.Context, verdicts map[string]models.Verdict) error {
	if len(verdicts) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(verdicts))
	for username, v := range verdicts {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal verdict for %s: %w", username, err)
		}
		fields[username] = data
	}

	if err := s.client.HSet(ctx, verdictHashKey, fields).Err(); err != nil {
		return fmt.Errorf("failed to save verdicts to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, verdictHashKey).Err(); err != nil {
		return fmt.Errorf("failed to clear verdicts from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
