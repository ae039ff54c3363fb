package memory

import (
	"context"
	"time"
)

// TranscriptEntry is one stored conversation turn.
type TranscriptEntry struct {
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TranscriptStore is the optional long-term sink the dialogue engine
// writes transcript turns into. Its retrieval behaviour is never
// consulted by the engine's decision logic; failures here must not fail
// a conversation turn.
type TranscriptStore interface {
	AddTurn(ctx context.Context, sessionID string, entry TranscriptEntry) error
	Recent(ctx context.Context, sessionID string, n int64) ([]TranscriptEntry, error)
	Clear(ctx context.Context, sessionID string) error
}
