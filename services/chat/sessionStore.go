// File: services/chat/sessionStore.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"homelead/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "chat:sess:"

// ErrSessionNotFound is returned when a session ID has no stored state
// (unknown, expired, or closed).
var ErrSessionNotFound = errors.New("chat session not found")

// SessionStore owns per-conversation state. Every Get returns an
// independently owned copy; two sessions never share a mutable value.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.ChatSession, error)
	Save(ctx context.Context, session *models.ChatSession) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions as JSON blobs with a TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.ChatSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.ChatSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+session.ID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionPrefix+sessionID).Err()
}

// LocalSessionStore is an in-process SessionStore for tests and
// redis-less deployments. It round-trips sessions through JSON so its
// copy semantics match the Redis store.
type LocalSessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewLocalSessionStore() *LocalSessionStore {
	return &LocalSessionStore{sessions: make(map[string][]byte)}
}

func (s *LocalSessionStore) Get(_ context.Context, sessionID string) (*models.ChatSession, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	var session models.ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *LocalSessionStore) Save(_ context.Context, session *models.ChatSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[session.ID] = b
	s.mu.Unlock()
	return nil
}

func (s *LocalSessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
