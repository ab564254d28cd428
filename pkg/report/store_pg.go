package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-adtree/pkg/semantics"
)

// PGStore persists reports in PostgreSQL
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, verifies the connection and creates the schema
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS adtree_reports (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL,
		file TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		nodes INTEGER NOT NULL,
		attacker_actions INTEGER NOT NULL,
		defender_actions INTEGER NOT NULL,
		defense_pairs INTEGER NOT NULL,
		duration_ns BIGINT NOT NULL,
		summary JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_adtree_reports_run_id ON adtree_reports(run_id);
	CREATE INDEX IF NOT EXISTS idx_adtree_reports_generated_at ON adtree_reports(generated_at);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Name implements Sink
func (s *PGStore) Name() string {
	return "postgres"
}

// Put implements Sink
func (s *PGStore) Put(ctx context.Context, r *Report) error {
	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO adtree_reports (id, run_id, file, generated_at, nodes, attacker_actions, defender_actions, defense_pairs, duration_ns, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID,
		r.RunID,
		r.File,
		r.GeneratedAt,
		r.Summary.Nodes,
		r.Summary.AttackerActions,
		r.Summary.DefenderActions,
		r.Summary.DefensePairs,
		r.Summary.Duration.Nanoseconds(),
		summaryJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// Recent returns the latest reports for file, newest first
func (s *PGStore) Recent(ctx context.Context, file string, limit int) ([]*Report, error) {
	query := `
		SELECT id, run_id, file, generated_at, summary
		FROM adtree_reports
		WHERE file = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, file, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		r := &Report{}
		var summaryJSON []byte
		if err := rows.Scan(&r.ID, &r.RunID, &r.File, &r.GeneratedAt, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var summary semantics.Summary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		r.Summary = summary
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
