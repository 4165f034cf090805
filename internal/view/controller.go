package view

import (
	"context"
	"fmt"
	"strings"
)

// ViewState is the only mutable state of a view: the current page and the
// filter query.
type ViewState struct {
	CurrentPage int
	FilterQuery string
}

// InitialState is the state right after a dataset is loaded.
func InitialState() ViewState {
	return ViewState{CurrentPage: 1}
}

// WithFilter returns the state for a changed filter. The page always resets
// to 1.
func (s ViewState) WithFilter(query string) ViewState {
	return ViewState{CurrentPage: 1, FilterQuery: query}
}

// Normalize clamps CurrentPage into [1, pageCount]. With no pages the page
// is 1.
func (s ViewState) Normalize(pageCount int) ViewState {
	switch {
	case s.CurrentPage < 1 || pageCount < 1:
		s.CurrentPage = 1
	case s.CurrentPage > pageCount:
		s.CurrentPage = pageCount
	}
	return s
}

// Options configures page size, button budget and labels.
type Options struct {
	RowsPerPage    int
	MaxPageButtons int
	Labels         Labels
}

// DefaultOptions returns rowsPerPage 10, maxPageButtons 5 and the schedule
// labels.
func DefaultOptions() Options {
	return Options{
		RowsPerPage:    DefaultRowsPerPage,
		MaxPageButtons: DefaultMaxPageButtons,
		Labels:         DefaultLabels,
	}
}

func (o Options) withDefaults() Options {
	if o.RowsPerPage <= 0 {
		o.RowsPerPage = DefaultRowsPerPage
	}
	if o.MaxPageButtons <= 0 {
		o.MaxPageButtons = DefaultMaxPageButtons
	}
	if o.Labels == (Labels{}) {
		o.Labels = DefaultLabels
	}
	return o
}

// Signals are the visibility toggles a frame asks its adapter to apply.
type Signals struct {
	ShowFilter     bool
	ShowDownload   bool
	ShowPagination bool
}

// Frame is the complete output of one trigger.
type Frame struct {
	State    ViewState
	Page     Page
	Window   PageWindow
	Rows     []Record // the rendered page slice
	Matched  int      // records left after filtering
	Total    int      // records in the dataset
	Table    string   // table or notice markup
	Controls string   // pagination controls markup
	Info     string   // "Page X of Y"
	Labels   Labels
	Signals  Signals
	Error    string
}

// Render runs the full pipeline for ds and st. It is a pure function:
// the same inputs always give the same Frame.
func Render(ctx context.Context, ds *Dataset, st ViewState, opts Options) (Frame, error) {
	filtered := Filter(ds.view(), st.FilterQuery)
	return renderFiltered(ctx, ds.Len(), filtered, st, opts.withDefaults())
}

// RenderError returns the frame of a failed upload: only the message, every
// signal off.
func RenderError(ctx context.Context, message string) (Frame, error) {
	table, err := renderString(ctx, ErrorNotice(message))
	if err != nil {
		return Frame{}, fmt.Errorf("render error notice: %w", err)
	}
	return Frame{Table: table, Error: message}, nil
}

func renderFiltered(ctx context.Context, total int, filtered []Record, st ViewState, opts Options) (Frame, error) {
	page := Paginate(len(filtered), opts.RowsPerPage, st.CurrentPage)
	rows := page.Slice(filtered)
	window := ComputeWindow(st.CurrentPage, page.Count, opts.MaxPageButtons)

	table, err := renderString(ctx, Table(rows, opts.Labels))
	if err != nil {
		return Frame{}, fmt.Errorf("render table: %w", err)
	}
	controls, err := renderString(ctx, Controls(window))
	if err != nil {
		return Frame{}, fmt.Errorf("render controls: %w", err)
	}

	return Frame{
		State:    st,
		Page:     page,
		Window:   window,
		Rows:     rows,
		Matched:  len(filtered),
		Total:    total,
		Table:    table,
		Controls: controls,
		Info:     InfoText(window),
		Labels:   opts.Labels,
		Signals: Signals{
			ShowFilter:     true,
			ShowDownload:   true,
			ShowPagination: window.Visible(),
		},
	}, nil
}

// Controller owns one view's state and coordinates the pipeline on each
// trigger. A Controller is not safe for concurrent use; triggers must be
// serialized by the caller's event loop.
type Controller struct {
	opts     Options
	dataset  *Dataset
	filtered []Record
	state    ViewState
	frame    Frame
	failed   bool

	generation uint64
}

// NewController returns a controller with no dataset.
func NewController(opts Options) *Controller {
	return &Controller{
		opts:  opts.withDefaults(),
		state: InitialState(),
	}
}

// State returns the current view state.
func (c *Controller) State() ViewState {
	return c.state
}

// Frame returns the last rendered frame.
func (c *Controller) Frame() Frame {
	return c.frame
}

// Dataset returns the loaded dataset, or nil.
func (c *Controller) Dataset() *Dataset {
	return c.dataset
}

// Load replaces the dataset, resets the page to 1 and renders. The filter
// query in effect is kept.
func (c *Controller) Load(ctx context.Context, ds *Dataset) (Frame, error) {
	c.generation++
	return c.load(ctx, ds)
}

func (c *Controller) load(ctx context.Context, ds *Dataset) (Frame, error) {
	c.dataset = ds
	c.failed = false
	c.filtered = Filter(ds.view(), c.state.FilterQuery)
	c.state = c.state.WithFilter(c.state.FilterQuery)
	return c.render(ctx)
}

// Fail replaces the view with an error message. The dataset is dropped so
// that no stale table, filter or download remains visible.
func (c *Controller) Fail(ctx context.Context, message string) (Frame, error) {
	c.generation++
	return c.fail(ctx, message)
}

func (c *Controller) fail(ctx context.Context, message string) (Frame, error) {
	f, err := RenderError(ctx, message)
	if err != nil {
		return c.frame, err
	}
	c.dataset = nil
	c.filtered = nil
	c.failed = true
	c.state = c.state.WithFilter(c.state.FilterQuery)
	c.frame = f
	return f, nil
}

// BeginLoad starts an asynchronous load and returns its token. Any earlier
// pending load becomes stale.
func (c *Controller) BeginLoad() uint64 {
	c.generation++
	return c.generation
}

// Complete finishes the load started by token. A stale token is discarded
// and reported with ok=false; the newest load always wins.
func (c *Controller) Complete(ctx context.Context, token uint64, ds *Dataset, loadErr error) (f Frame, ok bool, err error) {
	if token != c.generation {
		return c.frame, false, nil
	}
	if loadErr != nil {
		f, err = c.fail(ctx, loadErr.Error())
		return f, true, err
	}
	f, err = c.load(ctx, ds)
	return f, true, err
}

// SetFilter applies a new filter query and resets the page to 1.
func (c *Controller) SetFilter(ctx context.Context, query string) (Frame, error) {
	if c.failed {
		return c.frame, nil
	}
	c.state = c.state.WithFilter(query)
	c.filtered = Filter(c.dataset.view(), query)
	return c.render(ctx)
}

// Navigate moves to the page named by a over the current filtered records.
// Impossible moves leave the state unchanged; the frame is still returned.
func (c *Controller) Navigate(ctx context.Context, a PageAction) (Frame, error) {
	if c.failed {
		return c.frame, nil
	}
	pageCount := Paginate(len(c.filtered), c.opts.RowsPerPage, 1).Count
	target, ok := a.Target(c.state.CurrentPage, pageCount)
	if !ok {
		return c.frame, nil
	}
	c.state.CurrentPage = target
	return c.render(ctx)
}

func (c *Controller) render(ctx context.Context) (Frame, error) {
	f, err := renderFiltered(ctx, c.dataset.Len(), c.filtered, c.state, c.opts)
	if err != nil {
		return c.frame, err
	}
	c.frame = f
	return f, nil
}

// Summary returns a one-line description of the frame for logs and status
// bars.
func (f Frame) Summary() string {
	if f.Error != "" {
		return "error: " + f.Error
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d rows", f.Matched, f.Total)
	if f.State.FilterQuery != "" {
		fmt.Fprintf(&b, " matching %q", f.State.FilterQuery)
	}
	if f.Window.Visible() {
		fmt.Fprintf(&b, ", page %d of %d", f.Window.Current, f.Window.PageCount)
	}
	return b.String()
}
