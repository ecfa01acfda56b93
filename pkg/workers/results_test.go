package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/cardtable/pkg/repositories"
)

func TestResultsWorkerSaves(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	channel := make(chan repositories.MatchResult, 4)
	worker := NewResultsWorker(NewResultsWorkerOptions{
		Repository: repo,
		Channel:    channel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	channel <- repositories.MatchResult{
		SessionID: "session-1",
		Winner:    2,
		Reason:    repositories.ReasonGiveUp,
		Timestamp: time.Now(),
	}

	require.Eventually(t, func() bool {
		_, err := repo.GetMatchResult(context.Background(), "session-1")
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestResultsWorkerFlushesOnShutdown(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	channel := make(chan repositories.MatchResult, 4)
	worker := NewResultsWorker(NewResultsWorkerOptions{
		Repository: repo,
		Channel:    channel,
	})

	channel <- repositories.MatchResult{SessionID: "session-1", Reason: repositories.ReasonScore}
	channel <- repositories.MatchResult{SessionID: "session-2", Reason: repositories.ReasonDraw}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worker.Start(ctx)

	results, err := repo.ListMatchResults(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
