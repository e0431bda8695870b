package scheduler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// coldStartLookback bounds how much history a fresh deployment replays.
const coldStartLookback = 5 * time.Minute

// WatermarkStore persists the poll watermark so restarts do not re-process
// history. Load returns now-5m when no watermark was saved yet.
type WatermarkStore interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, markMs int64) error
}

// RedisWatermarkStore keeps the watermark in a Redis key.
type RedisWatermarkStore struct {
	client *redis.Client
	key    string
}

// NewRedisWatermarkStore creates a store keyed per channel.
func NewRedisWatermarkStore(client *redis.Client, channel string) *RedisWatermarkStore {
	return &RedisWatermarkStore{client: client, key: "poll:watermark:" + channel}
}

func (s *RedisWatermarkStore) Load(ctx context.Context) (int64, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return coldStartMark(), nil
	}
	if err != nil {
		return 0, err
	}
	mark, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return coldStartMark(), nil
	}
	return mark, nil
}

func (s *RedisWatermarkStore) Save(ctx context.Context, markMs int64) error {
	return s.client.Set(ctx, s.key, strconv.FormatInt(markMs, 10), 0).Err()
}

// MemoryWatermarkStore is the mock-mode watermark.
type MemoryWatermarkStore struct {
	mu   sync.Mutex
	mark int64
	set  bool
}

// NewMemoryWatermarkStore creates an empty store.
func NewMemoryWatermarkStore() *MemoryWatermarkStore {
	return &MemoryWatermarkStore{}
}

func (s *MemoryWatermarkStore) Load(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return coldStartMark(), nil
	}
	return s.mark, nil
}

func (s *MemoryWatermarkStore) Save(_ context.Context, markMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark = markMs
	s.set = true
	return nil
}

func coldStartMark() int64 {
	return time.Now().Add(-coldStartLookback).UnixMilli()
}
