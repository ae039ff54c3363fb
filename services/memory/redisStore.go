// File: services/memory/redisStore.go
package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const transcriptPrefix = "chat:mem:"

// RedisTranscriptStore keeps each session's transcript in a Redis list.
type RedisTranscriptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTranscriptStore(client *redis.Client, ttl time.Duration) *RedisTranscriptStore {
	return &RedisTranscriptStore{client: client, ttl: ttl}
}

func (s *RedisTranscriptStore) AddTurn(ctx context.Context, sessionID string, entry TranscriptEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := transcriptPrefix + sessionID
	if err := s.client.RPush(ctx, key, b).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisTranscriptStore) Recent(ctx context.Context, sessionID string, n int64) ([]TranscriptEntry, error) {
	key := transcriptPrefix + sessionID
	raw, err := s.client.LRange(ctx, key, -n, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries := make([]TranscriptEntry, 0, len(raw))
	for _, item := range raw {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisTranscriptStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, transcriptPrefix+sessionID).Err()
}
