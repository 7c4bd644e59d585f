package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

const queueKeyPrefix = "offline:queue:"

// RedisListStore keeps each offline queue as a Redis list of JSON
// attempts. It satisfies offline.ListStore.
type RedisListStore struct {
	client *redis.Client
}

func NewRedisListStore(addr, password string, db int) *RedisListStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisListStore{client: rdb}
}

func queueKey(queue string) string {
	return queueKeyPrefix + queue
}

func (s *RedisListStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisListStore) Close() error {
	return s.client.Close()
}

func (s *RedisListStore) LoadAttempts(ctx context.Context, queue string) ([]model.QueuedAttempt, error) {
	items, err := s.client.LRange(ctx, queueKey(queue), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read queue %s: %w", queue, err)
	}

	attempts := make([]model.QueuedAttempt, 0, len(items))
	for i, item := range items {
		var a model.QueuedAttempt
		err = json.Unmarshal([]byte(item), &a)
		if err != nil {
			return nil, fmt.Errorf("failed to decode queue %s item %d: %w", queue, i, err)
		}
		attempts = append(attempts, a)
	}

	return attempts, nil
}

// ReplaceAttempts swaps the whole list in one MULTI/EXEC.
func (s *RedisListStore) ReplaceAttempts(ctx context.Context, queue string, attempts []model.QueuedAttempt) error {
	items, err := encodeAttempts(attempts)
	if err != nil {
		return fmt.Errorf("failed to encode queue %s: %w", queue, err)
	}

	key := queueKey(queue)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(items) > 0 {
			pipe.RPush(ctx, key, items...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write queue %s: %w", queue, err)
	}

	return nil
}

func encodeAttempts(attempts []model.QueuedAttempt) ([]any, error) {
	items := make([]any, 0, len(attempts))
	for _, a := range attempts {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		items = append(items, string(b))
	}
	return items, nil
}
