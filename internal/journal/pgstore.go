package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed journal Store using pgx/v5.
//
// Expected schema:
//
//	CREATE TABLE navigation_journal (
//	    id          UUID PRIMARY KEY,
//	    session_id  TEXT NOT NULL,
//	    from_route  TEXT NOT NULL,
//	    requested   TEXT NOT NULL,
//	    to_route    TEXT NOT NULL,
//	    full_path   TEXT NOT NULL,
//	    result      TEXT NOT NULL,
//	    duration_ms BIGINT NOT NULL,
//	    at          TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX navigation_journal_session_idx ON navigation_journal (session_id, at DESC);
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PostgreSQL journal store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Append adds an entry to the trail.
func (s *PgStore) Append(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO navigation_journal (
			id, session_id, from_route, requested, to_route,
			full_path, result, duration_ms, at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.SessionID, e.FromRoute, e.Requested, e.ToRoute,
		e.FullPath, e.Result, e.Duration.Milliseconds(), e.At,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// List returns entries matching the filters, most recent first.
func (s *PgStore) List(ctx context.Context, f Filters) ([]Entry, error) {
	query := `
		SELECT id, session_id, from_route, requested, to_route,
		       full_path, result, duration_ms, at
		FROM navigation_journal
		WHERE 1=1`
	args := []any{}
	argN := 1

	if f.SessionID != "" {
		query += fmt.Sprintf(" AND session_id = $%d", argN)
		args = append(args, f.SessionID)
		argN++
	}
	if f.Result != "" {
		query += fmt.Sprintf(" AND result = $%d", argN)
		args = append(args, f.Result)
		argN++
	}

	query += " ORDER BY at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argN)
		args = append(args, f.Limit)
		argN++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argN)
		args = append(args, f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.FromRoute, &e.Requested, &e.ToRoute,
			&e.FullPath, &e.Result, &durationMs, &e.At,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return out, nil
}

// HealthCheck pings the database.
func (s *PgStore) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("journal db ping: %w", err)
	}
	return nil
}
