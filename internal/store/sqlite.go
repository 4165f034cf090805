package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schedules (
	id            TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	course_groups INTEGER NOT NULL DEFAULT 0,
	unplaced      INTEGER NOT NULL DEFAULT 0,
	schedule      TEXT NOT NULL,
	duties        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS schedules_created_at_idx ON schedules (created_at);
`

// SQLite stores schedules in an embedded database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. Timestamps are stored
// as Unix nanoseconds.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schedules table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, sc *Schedule) error {
	schedule, duties, err := encodeDatasets(sc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, created_at, course_groups, unplaced, schedule, duties)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID.String(), sc.CreatedAt.UnixNano(), sc.CourseGroups, sc.Unplaced, string(schedule), string(duties),
	)
	if err != nil {
		return fmt.Errorf("insert schedule %s: %w", sc.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var (
		sc       = &Schedule{ID: id}
		created  int64
		schedule string
		duties   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, course_groups, unplaced, schedule, duties
		FROM schedules WHERE id = ?`,
		id.String(),
	).Scan(&created, &sc.CourseGroups, &sc.Unplaced, &schedule, &duties)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select schedule %s: %w", id, err)
	}

	sc.CreatedAt = time.Unix(0, created)
	if sc.Schedule, err = decodeDataset([]byte(schedule)); err != nil {
		return nil, fmt.Errorf("decode schedule %s: %w", id, err)
	}
	if sc.Duties, err = decodeDataset([]byte(duties)); err != nil {
		return nil, fmt.Errorf("decode duties %s: %w", id, err)
	}
	return sc, nil
}

func (s *SQLite) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete expired schedules: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
