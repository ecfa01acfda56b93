package workers

import (
	"context"
	"time"

	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/repositories"
)

const (
	saveTimeout = 5 * time.Second
)

// ResultsWorker drains match results from sessions and persists them.
// Sessions write records with a non-blocking send, so a slow or down
// database costs dropped records, never stalled games.
type ResultsWorker struct {
	repository repositories.Repository
	channel    <-chan repositories.MatchResult
}

// NewResultsWorkerOptions contains options for creating a new ResultsWorker.
type NewResultsWorkerOptions struct {
	Repository repositories.Repository
	Channel    <-chan repositories.MatchResult
}

func NewResultsWorker(opts NewResultsWorkerOptions) *ResultsWorker {
	return &ResultsWorker{
		repository: opts.Repository,
		channel:    opts.Channel,
	}
}

// Start processes records until the context is cancelled. Records
// already queued when cancellation happens are flushed before return.
func (w *ResultsWorker) Start(ctx context.Context) {
	for {
		select {
		case result := <-w.channel:
			w.save(ctx, result)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *ResultsWorker) save(ctx context.Context, result repositories.MatchResult) {
	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := w.repository.SaveMatchResult(saveCtx, result); err != nil {
		log.Error("failed to save match result for session %s: %v", result.SessionID, err)
		return
	}
	log.Debug("saved match result for session %s", result.SessionID)
}

func (w *ResultsWorker) flush() {
	for {
		select {
		case result := <-w.channel:
			saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			if err := w.repository.SaveMatchResult(saveCtx, result); err != nil {
				log.Error("failed to save match result for session %s: %v", result.SessionID, err)
			}
			cancel()
		default:
			return
		}
	}
}
