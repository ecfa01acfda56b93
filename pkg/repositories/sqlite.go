package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database file at path and
// ensures the match_results table exists.
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	q := `
	CREATE TABLE IF NOT EXISTS match_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		winner INTEGER NOT NULL,
		reason TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %v", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveMatchResult(ctx context.Context, result MatchResult) error {
	q := `
	INSERT INTO match_results (session_id, winner, reason, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, result.SessionID, result.Winner, result.Reason, result.Duration.Milliseconds(), result.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) GetMatchResult(ctx context.Context, sessionID string) (*MatchResult, error) {
	q := `
	SELECT session_id, winner, reason, duration_ms, created_at
	FROM match_results WHERE session_id = ?
	ORDER BY id DESC LIMIT 1;
	`
	var result MatchResult
	var durationMs int64
	if err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&result.SessionID, &result.Winner, &result.Reason, &durationMs, &result.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match result: %v", err)
	}
	result.Duration = time.Duration(durationMs) * time.Millisecond

	return &result, nil
}

func (r *SQLiteRepository) ListMatchResults(ctx context.Context, limit int) ([]MatchResult, error) {
	q := `
	SELECT session_id, winner, reason, duration_ms, created_at
	FROM match_results ORDER BY id DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	results := make([]MatchResult, 0, limit)
	for rows.Next() {
		var result MatchResult
		var durationMs int64
		if err := rows.Scan(&result.SessionID, &result.Winner, &result.Reason, &durationMs, &result.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %v", err)
		}
		result.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, result)
	}

	return results, nil
}
