package memory

import (
	"context"
	"sync"
	"time"
)

// LocalTranscriptStore is an in-process TranscriptStore used in tests
// and in deployments that run without Redis.
type LocalTranscriptStore struct {
	mu      sync.RWMutex
	entries map[string][]TranscriptEntry
}

func NewLocalTranscriptStore() *LocalTranscriptStore {
	return &LocalTranscriptStore{entries: make(map[string][]TranscriptEntry)}
}

func (s *LocalTranscriptStore) AddTurn(_ context.Context, sessionID string, entry TranscriptEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = append(s.entries[sessionID], entry)
	return nil
}

func (s *LocalTranscriptStore) Recent(_ context.Context, sessionID string, n int64) ([]TranscriptEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.entries[sessionID]
	if int64(len(all)) > n {
		all = all[int64(len(all))-n:]
	}
	out := make([]TranscriptEntry, len(all))
	copy(out, all)
	return out, nil
}

func (s *LocalTranscriptStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
