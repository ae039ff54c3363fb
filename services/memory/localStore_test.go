package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTranscriptStoreAppendAndRecent(t *testing.T) {
	store := NewLocalTranscriptStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := store.AddTurn(ctx, "s-1", TranscriptEntry{
			Role: "user",
			Text: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, "s-1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "message 2", recent[0].Text)
	assert.Equal(t, "message 4", recent[2].Text)
	// Timestamps are filled in when the caller leaves them zero.
	assert.False(t, recent[0].Timestamp.IsZero())
}

func TestLocalTranscriptStoreSessionsAreIsolated(t *testing.T) {
	store := NewLocalTranscriptStore()
	ctx := context.Background()

	require.NoError(t, store.AddTurn(ctx, "s-1", TranscriptEntry{Role: "user", Text: "hello"}))

	recent, err := store.Recent(ctx, "s-2", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestLocalTranscriptStoreClear(t *testing.T) {
	store := NewLocalTranscriptStore()
	ctx := context.Background()

	require.NoError(t, store.AddTurn(ctx, "s-1", TranscriptEntry{Role: "user", Text: "hello"}))
	require.NoError(t, store.Clear(ctx, "s-1"))

	recent, err := store.Recent(ctx, "s-1", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestLocalTranscriptStoreRecentReturnsCopy(t *testing.T) {
	store := NewLocalTranscriptStore()
	ctx := context.Background()

	require.NoError(t, store.AddTurn(ctx, "s-1", TranscriptEntry{Role: "user", Text: "hello"}))

	recent, err := store.Recent(ctx, "s-1", 10)
	require.NoError(t, err)
	recent[0].Text = "mutated"

	again, err := store.Recent(ctx, "s-1", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", again[0].Text)
}
