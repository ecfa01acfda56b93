package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and ensures the
// match_results table exists. The caller is responsible for calling
// Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	q := `
	CREATE TABLE IF NOT EXISTS match_results (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		winner INTEGER NOT NULL,
		reason TEXT NOT NULL,
		duration_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`
	if _, err := conn.Exec(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveMatchResult(ctx context.Context, result MatchResult) error {
	q := `
	INSERT INTO match_results (session_id, winner, reason, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.conn.Exec(ctx, q, result.SessionID, result.Winner, result.Reason, result.Duration.Milliseconds(), result.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *PostgresRepository) GetMatchResult(ctx context.Context, sessionID string) (*MatchResult, error) {
	q := `
	SELECT session_id, winner, reason, duration_ms, created_at
	FROM match_results WHERE session_id = $1
	ORDER BY id DESC LIMIT 1;
	`
	result, err := scanMatchResult(r.conn.QueryRow(ctx, q, sessionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match result: %v", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListMatchResults(ctx context.Context, limit int) ([]MatchResult, error) {
	q := `
	SELECT session_id, winner, reason, duration_ms, created_at
	FROM match_results ORDER BY id DESC LIMIT $1;
	`
	rows, err := r.conn.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	results := make([]MatchResult, 0, limit)
	for rows.Next() {
		result, err := scanMatchResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %v", err)
		}
		results = append(results, *result)
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchResult(row rowScanner) (*MatchResult, error) {
	var result MatchResult
	var durationMs int64
	if err := row.Scan(&result.SessionID, &result.Winner, &result.Reason, &durationMs, &result.Timestamp); err != nil {
		return nil, err
	}
	result.Duration = time.Duration(durationMs) * time.Millisecond
	return &result, nil
}
