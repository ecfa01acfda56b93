package repositories

import (
	"context"
	"sync"
)

// InMemoryRepository keeps match results in process memory. It is the
// default when no database is configured, and is used in tests.
type InMemoryRepository struct {
	lock    sync.RWMutex
	results []MatchResult
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveMatchResult(ctx context.Context, result MatchResult) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.results = append(r.results, result)
	return nil
}

func (r *InMemoryRepository) GetMatchResult(ctx context.Context, sessionID string) (*MatchResult, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].SessionID == sessionID {
			result := r.results[i]
			return &result, nil
		}
	}
	return nil, &ErrNotFound{}
}

func (r *InMemoryRepository) ListMatchResults(ctx context.Context, limit int) ([]MatchResult, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	results := make([]MatchResult, 0, limit)
	for i := len(r.results) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, r.results[i])
	}
	return results, nil
}
