package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/examgrid/internal/config"
	"github.com/JonMunkholm/examgrid/internal/logging"
	"github.com/JonMunkholm/examgrid/internal/schedule"
	"github.com/JonMunkholm/examgrid/internal/store"
	"github.com/JonMunkholm/examgrid/internal/view"
)

// ErrMissingUploadFile is returned when one of the three workbooks is absent.
var ErrMissingUploadFile = errors.New("missing upload file")

// ErrUnknownDataset is returned for a view of anything but the schedule or
// the duty roster.
var ErrUnknownDataset = errors.New("unknown dataset")

// DefaultGenerateTimeout bounds a generation when the config leaves it unset.
const DefaultGenerateTimeout = 2 * time.Minute

// Service ties generation, storage and presentation together. It is safe
// for concurrent use.
type Service struct {
	store     store.Store
	generator *schedule.Generator
	limiter   *GenerationLimiter
	viewOpts  view.Options
	timeout   time.Duration
	now       func() time.Time
}

// NewService builds a service over st using gen for generation. Limits and
// view constants come from cfg.
func NewService(st store.Store, gen *schedule.Generator, cfg *config.Config) *Service {
	timeout := cfg.Upload.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &Service{
		store:     st,
		generator: gen,
		limiter:   NewGenerationLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		viewOpts: view.Options{
			RowsPerPage:    cfg.View.RowsPerPage,
			MaxPageButtons: cfg.View.MaxPageButtons,
		},
		timeout: timeout,
		now:     time.Now,
	}
}

// Upload holds the three workbooks of one generation request.
type Upload struct {
	Courses  io.Reader
	Rooms    io.Reader
	Teachers io.Reader
}

func (u Upload) missing() []string {
	var names []string
	if u.Courses == nil {
		names = append(names, "courseFile")
	}
	if u.Rooms == nil {
		names = append(names, "roomFile")
	}
	if u.Teachers == nil {
		names = append(names, "teacherFile")
	}
	return names
}

// Generate parses the workbooks, builds a schedule and stores it. It waits
// for a generation slot first and fails with ErrTooManyGenerations when
// none frees up in time.
func (s *Service) Generate(ctx context.Context, up Upload) (*store.Schedule, error) {
	if missing := up.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingUploadFile, missing)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	in, err := schedule.ReadInput(up.Courses, up.Rooms, up.Teachers)
	if err != nil {
		return nil, err
	}

	res, err := s.generator.Generate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}

	sc := &store.Schedule{
		ID:           uuid.New(),
		CreatedAt:    s.now(),
		Schedule:     res.Schedule,
		Duties:       res.Duties,
		CourseGroups: res.CourseGroups,
		Unplaced:     res.Unplaced,
	}
	if err := s.store.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("save schedule: %w", err)
	}

	meta := RequestMetaFrom(ctx)
	log := logging.WithFields(ctx, "schedule_id", sc.ID.String())
	log.Info("schedule generated",
		"courses", len(in.Courses),
		"rooms", len(in.Rooms),
		"teachers", len(in.Teachers),
		"rows", sc.Schedule.Len(),
		"duties", sc.Duties.Len(),
		"duration_ms", s.now().Sub(start).Milliseconds(),
		"ip", meta.IPAddress,
	)
	if sc.Unplaced > 0 {
		log.Warn("students left without a room", "unplaced", sc.Unplaced)
	}
	return sc, nil
}

// Get returns a stored schedule.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*store.Schedule, error) {
	return s.store.Get(ctx, id)
}

// Lookup parses a schedule ID from a URL and loads it. A malformed ID reads
// as not found.
func (s *Service) Lookup(ctx context.Context, rawID string) (*store.Schedule, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, rawID)
	}
	return s.Get(ctx, id)
}

// DutiesLabels title the duty roster view.
var DutiesLabels = view.Labels{
	Title: "Teacher Duties",
	Empty: "No duties assigned.",
}

// View renders one page of a stored dataset. The requested page is clamped
// into range, so stale links land on the nearest valid page.
func (s *Service) View(ctx context.Context, sc *store.Schedule, set string, st view.ViewState) (view.Frame, error) {
	ds, ok := sc.Dataset(set)
	if !ok {
		return view.Frame{}, fmt.Errorf("%w: %q", ErrUnknownDataset, set)
	}

	opts := s.viewOpts
	if set == "duties" {
		opts.Labels = DutiesLabels
	}

	frame, err := view.Render(ctx, ds, st, opts)
	if err != nil {
		return view.Frame{}, err
	}
	if frame.Page.InRange || frame.Page.Count == 0 {
		return frame, nil
	}
	return view.Render(ctx, ds, st.Normalize(frame.Page.Count), opts)
}

// Navigate applies a page action to st and renders the page it leads to.
// Moves that are impossible from the current page, such as Prev on page 1,
// render st unchanged.
func (s *Service) Navigate(ctx context.Context, sc *store.Schedule, set string, st view.ViewState, a view.PageAction) (view.Frame, error) {
	frame, err := s.View(ctx, sc, set, st)
	if err != nil {
		return view.Frame{}, err
	}

	target, ok := a.Target(frame.State.CurrentPage, frame.Page.Count)
	if !ok || target == frame.State.CurrentPage {
		return frame, nil
	}
	next := frame.State
	next.CurrentPage = target
	return s.View(ctx, sc, set, next)
}

// LimiterStatus reports generation slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForGenerations blocks until in-flight generations finish or ctx ends.
func (s *Service) WaitForGenerations(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
