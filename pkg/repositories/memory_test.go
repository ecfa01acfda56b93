package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.GetMatchResult(ctx, "missing")
	assert.True(t, IsNotFound(err))

	first := MatchResult{
		SessionID: "session-1",
		Winner:    1,
		Reason:    ReasonScore,
		Duration:  2 * time.Minute,
		Timestamp: time.Now(),
	}
	second := MatchResult{
		SessionID: "session-2",
		Winner:    0,
		Reason:    ReasonDraw,
		Duration:  time.Minute,
		Timestamp: time.Now(),
	}
	require.NoError(t, repo.SaveMatchResult(ctx, first))
	require.NoError(t, repo.SaveMatchResult(ctx, second))

	got, err := repo.GetMatchResult(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, first, *got)

	results, err := repo.ListMatchResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Most recent first.
	assert.Equal(t, second, results[0])
	assert.Equal(t, first, results[1])

	results, err = repo.ListMatchResults(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, second, results[0])
}

func TestInMemoryRepositoryGetLatestForSession(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	older := MatchResult{SessionID: "session-1", Winner: 1, Reason: ReasonScore}
	newer := MatchResult{SessionID: "session-1", Winner: 2, Reason: ReasonGiveUp}
	require.NoError(t, repo.SaveMatchResult(ctx, older))
	require.NoError(t, repo.SaveMatchResult(ctx, newer))

	// A restarted session records several matches; Get returns the latest.
	got, err := repo.GetMatchResult(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, newer, *got)
}
