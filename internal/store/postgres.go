package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/examgrid/internal/config"
)

// json rather than jsonb: jsonb reorders object keys, and key order is
// column order.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS schedules (
	id            uuid PRIMARY KEY,
	created_at    timestamptz NOT NULL,
	course_groups integer NOT NULL DEFAULT 0,
	unplaced      integer NOT NULL DEFAULT 0,
	schedule      json NOT NULL,
	duties        json NOT NULL
);
CREATE INDEX IF NOT EXISTS schedules_created_at_idx ON schedules (created_at);
`

// Postgres stores schedules in a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool sized from cfg, verifies it and creates the
// schedules table when missing.
func OpenPostgres(ctx context.Context, cfg config.StorageConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgres(pool)
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing pool. Call Migrate before first use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the schedules table and index if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schedules table: %w", err)
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, s *Schedule) error {
	schedule, duties, err := encodeDatasets(s)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO schedules (id, created_at, course_groups, unplaced, schedule, duties)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID.String(), s.CreatedAt, s.CourseGroups, s.Unplaced, string(schedule), string(duties),
	)
	if err != nil {
		return fmt.Errorf("insert schedule %s: %w", s.ID, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var (
		s        = &Schedule{ID: id}
		schedule []byte
		duties   []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT created_at, course_groups, unplaced, schedule::text, duties::text
		FROM schedules WHERE id = $1`,
		id.String(),
	).Scan(&s.CreatedAt, &s.CourseGroups, &s.Unplaced, &schedule, &duties)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select schedule %s: %w", id, err)
	}

	if s.Schedule, err = decodeDataset(schedule); err != nil {
		return nil, fmt.Errorf("decode schedule %s: %w", id, err)
	}
	if s.Duties, err = decodeDataset(duties); err != nil {
		return nil, fmt.Errorf("decode duties %s: %w", id, err)
	}
	return s, nil
}

func (p *Postgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM schedules WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired schedules: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
