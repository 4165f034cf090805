// Package templates renders the HTML pages and fragments of the web UI.
//
// The components are written in .templ files; the *_templ.go files next to
// them are produced by `templ generate`. The table, pagination controls and
// page info come from the view package, so the web UI and the view pipeline
// share one rendering.
package templates

import (
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/examgrid/internal/view"
)

// ScheduleData is one rendered view of a stored schedule.
type ScheduleData struct {
	ID           string
	Set          string // "schedule" or "duties"
	CreatedAt    time.Time
	CourseGroups int
	Unplaced     int
	Frame        view.Frame
}

// viewerState is what the viewer shell needs from d. With no data every
// control starts hidden.
func viewerState(d *ScheduleData) (id, set, query string, sig view.Signals) {
	if d != nil {
		id, set = d.ID, d.Set
		query = d.Frame.State.FilterQuery
		sig = d.Frame.Signals
	}
	if set == "" {
		set = "schedule"
	}
	return id, set, query, sig
}

func downloadHref(id, format string) templ.SafeURL {
	if id == "" {
		return "#"
	}
	return templ.URL("/schedules/" + id + "/download." + format)
}
