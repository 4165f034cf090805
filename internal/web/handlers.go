package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/export"
	"github.com/JonMunkholm/examgrid/internal/logging"
	"github.com/JonMunkholm/examgrid/internal/store"
	"github.com/JonMunkholm/examgrid/internal/view"
	"github.com/JonMunkholm/examgrid/internal/web/templates"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.UploadPage().Render(r.Context(), w)
}

// handleHealth reports liveness and generation slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"generations": s.service.LimiterStatus(),
	})
}

// uploadResponse is the JSON body of a successful upload.
type uploadResponse struct {
	ID           string        `json:"id"`
	Rows         int           `json:"rows"`
	Duties       int           `json:"duties"`
	CourseGroups int           `json:"course_groups"`
	Unplaced     int           `json:"unplaced"`
	Schedule     *view.Dataset `json:"schedule"`
}

// handleUpload generates a schedule from the courseFile, roomFile and
// teacherFile workbooks. Failures answer {"error": message}.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			err = fmt.Errorf("%w: %v", core.ErrMissingUploadFile, err)
		}
		respondError(w, r, fmt.Errorf("parse upload: %w", err), statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []io.Closer
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	open := func(field string) io.Reader {
		f, _, err := r.FormFile(field)
		if err != nil {
			return nil
		}
		files = append(files, f)
		return f
	}

	up := core.Upload{
		Courses:  open("courseFile"),
		Rooms:    open("roomFile"),
		Teachers: open("teacherFile"),
	}

	sc, err := s.service.Generate(withRequestMeta(r.Context(), r), up)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		ID:           sc.ID.String(),
		Rows:         sc.Schedule.Len(),
		Duties:       sc.Duties.Len(),
		CourseGroups: sc.CourseGroups,
		Unplaced:     sc.Unplaced,
		Schedule:     sc.Schedule,
	})
}

// viewParams reads set, q and page from the query string. A missing or
// malformed page reads as 1; the service clamps the rest.
func viewParams(r *http.Request) (string, view.ViewState) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	set := q.Get("set")
	if set == "" {
		set = "schedule"
	}
	return set, view.ViewState{CurrentPage: page, FilterQuery: q.Get("q")}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*store.Schedule, bool) {
	sc, err := s.service.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return sc, true
}

// handleSchedulePage renders a stored schedule as a full page. The query
// string selects the dataset, filter and page, so views can be shared.
func (s *Server) handleSchedulePage(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	set, st := viewParams(r)
	frame, err := s.service.View(r.Context(), sc, set, st)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.SchedulePage(scheduleData(sc, set, frame)).Render(r.Context(), w)
}

// handleView renders one view fragment. An action parameter (prev, next,
// first, last or a page number) moves from page; anything else in it is
// ignored.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	set, st := viewParams(r)
	var frame view.Frame
	var err error
	if raw := r.URL.Query().Get("action"); raw != "" {
		action, perr := view.ParseAction(raw)
		if perr != nil {
			logging.FromContext(r.Context()).Debug("ignoring page action", "action", raw, "error", perr)
			frame, err = s.service.View(r.Context(), sc, set, st)
		} else {
			frame, err = s.service.Navigate(r.Context(), sc, set, st, action)
		}
	} else {
		frame, err = s.service.View(r.Context(), sc, set, st)
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := templates.ViewFragment(scheduleData(sc, set, frame)).Render(r.Context(), &buf); err != nil {
		respondError(w, r, fmt.Errorf("render view: %w", err), http.StatusInternalServerError)
		return
	}
	serveCached(w, r, "text/html; charset=utf-8", buf.Bytes())
}

// handleDownload serves the schedule in format. Excel downloads carry the
// schedule and duty roster as two sheets; CSV holds the dataset named by
// the set parameter.
func (s *Server) handleDownload(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := export.ParseFormat(format)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		sc, ok := s.lookup(w, r)
		if !ok {
			return
		}

		filename := f.Filename()
		var sheets []export.Sheet
		switch f {
		case export.FormatXLSX:
			sheets = []export.Sheet{
				{Name: "Schedule", Data: sc.Schedule},
				{Name: "Duties", Data: sc.Duties},
			}
		default:
			set, _ := viewParams(r)
			ds, ok := sc.Dataset(set)
			if !ok {
				err := fmt.Errorf("%w: %q", core.ErrUnknownDataset, set)
				respondError(w, r, err, statusFor(err))
				return
			}
			if set == "duties" {
				filename = "TeacherDuties." + string(f)
			}
			sheets = []export.Sheet{{Name: "Schedule", Data: ds}}
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, f, sheets...); err != nil {
			respondError(w, r, fmt.Errorf("export %s: %w", f, err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		serveCached(w, r, f.ContentType(), buf.Bytes())
	}
}

// apiSchedule is the JSON form of a stored schedule.
type apiSchedule struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	CourseGroups int           `json:"course_groups"`
	Unplaced     int           `json:"unplaced"`
	Schedule     *view.Dataset `json:"schedule"`
	Duties       *view.Dataset `json:"duties"`
}

// handleAPISchedule returns a stored schedule with both datasets.
func (s *Server) handleAPISchedule(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, apiSchedule{
		ID:           sc.ID.String(),
		CreatedAt:    sc.CreatedAt,
		CourseGroups: sc.CourseGroups,
		Unplaced:     sc.Unplaced,
		Schedule:     sc.Schedule,
		Duties:       sc.Duties,
	})
}

func scheduleData(sc *store.Schedule, set string, frame view.Frame) templates.ScheduleData {
	return templates.ScheduleData{
		ID:           sc.ID.String(),
		Set:          set,
		CreatedAt:    sc.CreatedAt,
		CourseGroups: sc.CourseGroups,
		Unplaced:     sc.Unplaced,
		Frame:        frame,
	}
}

// serveCached writes body with an xxh3 ETag and answers 304 when the
// client already holds it.
func serveCached(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	etag := export.ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}
