package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/examgrid/internal/config"
	"github.com/JonMunkholm/examgrid/internal/view"
)

func sampleSchedule(created time.Time) *Schedule {
	return &Schedule{
		ID:        uuid.New(),
		CreatedAt: created,
		Schedule: view.NewDataset([]view.Record{
			view.NewRecord(
				view.Field{Key: "Date", Value: "2024-10-28"},
				view.Field{Key: "Course Code", Value: "CS101"},
				view.Field{Key: "Semester", Value: int64(3)},
				view.Field{Key: "Teacher 2", Value: nil},
			),
		}),
		Duties:       view.NewDataset(nil),
		CourseGroups: 1,
		Unplaced:     4,
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	old := sampleSchedule(now.Add(-48 * time.Hour))
	fresh := sampleSchedule(now)
	for _, sc := range []*Schedule{old, fresh} {
		if err := s.Save(ctx, sc); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.Get(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Unplaced != 4 || got.CourseGroups != 1 {
		t.Errorf("counters = %d/%d, want 1/4", got.CourseGroups, got.Unplaced)
	}
	if got.Schedule.Len() != 1 {
		t.Fatalf("schedule rows = %d, want 1", got.Schedule.Len())
	}
	keys := got.Schedule.Columns()
	want := []string{"Date", "Course Code", "Semester", "Teacher 2"}
	for i := range want {
		if i >= len(keys) || keys[i] != want[i] {
			t.Fatalf("column order = %v, want %v", keys, want)
		}
	}
	if v, _ := got.Schedule.At(0).Get("Semester"); v != int64(3) {
		t.Errorf("Semester = %#v, want int64(3)", v)
	}
	if v, ok := got.Schedule.At(0).Get("Teacher 2"); !ok || v != nil {
		t.Errorf("Teacher 2 = %#v (present %v), want null", v, ok)
	}
	if got.Duties.Len() != 0 {
		t.Errorf("duties rows = %d, want 0", got.Duties.Len())
	}

	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}

	n, err := s.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if _, err := s.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired schedule still readable: %v", err)
	}
	if _, err := s.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh schedule deleted: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "examgrid.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	if _, err := Open(ctx, config.StorageConfig{Driver: "mongo"}); err == nil {
		t.Error("Open(mongo) expected error")
	}
}

func TestScheduleDataset(t *testing.T) {
	sc := sampleSchedule(time.Now())
	tests := []struct {
		name string
		want *view.Dataset
		ok   bool
	}{
		{"", sc.Schedule, true},
		{"schedule", sc.Schedule, true},
		{"duties", sc.Duties, true},
		{"rooms", nil, false},
	}
	for _, tt := range tests {
		got, ok := sc.Dataset(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Dataset(%q) = %p, %v", tt.name, got, ok)
		}
	}
}
