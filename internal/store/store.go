// Package store keeps generated schedules so they can be viewed and
// downloaded after the upload request returns.
//
// Three backends share the Store interface: an in-process map, PostgreSQL
// through pgx, and an embedded SQLite file. Datasets are stored as JSON
// arrays with column order preserved.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/examgrid/internal/config"
	"github.com/JonMunkholm/examgrid/internal/view"
)

// ErrNotFound is returned when no schedule has the requested ID.
var ErrNotFound = errors.New("schedule not found")

// Schedule is one stored generation result.
type Schedule struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Schedule     *view.Dataset
	Duties       *view.Dataset
	CourseGroups int
	Unplaced     int
}

// Dataset returns the named dataset: "schedule" or "duties".
func (s *Schedule) Dataset(name string) (*view.Dataset, bool) {
	switch name {
	case "", "schedule":
		return s.Schedule, true
	case "duties":
		return s.Duties, true
	default:
		return nil, false
	}
}

// Store persists schedules.
type Store interface {
	Save(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, id uuid.UUID) (*Schedule, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		return OpenPostgres(ctx, cfg)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
