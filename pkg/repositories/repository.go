package repositories

import (
	"context"
	"time"
)

// Reasons a match can end.
const (
	ReasonGiveUp = "giveUp"
	ReasonScore  = "score"
	ReasonDraw   = "draw"
	ReasonAbort  = "abort"
)

// MatchResult is the record of one completed (or aborted) match.
// Winner is the winning slot, or 0 for a draw or an aborted match.
type MatchResult struct {
	SessionID string        `json:"sessionId"`
	Winner    int           `json:"winner"`
	Reason    string        `json:"reason"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

type Repository interface {
	Close(ctx context.Context) error
	SaveMatchResult(ctx context.Context, result MatchResult) error
	// GetMatchResult returns the most recent result recorded for the
	// session, or ErrNotFound.
	GetMatchResult(ctx context.Context, sessionID string) (*MatchResult, error)
	// ListMatchResults returns up to limit results, most recent first.
	ListMatchResults(ctx context.Context, limit int) ([]MatchResult, error)
}
