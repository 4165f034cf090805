package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/examgrid/internal/config"
	"github.com/JonMunkholm/examgrid/internal/core"
	"github.com/JonMunkholm/examgrid/internal/schedule"
	"github.com/JonMunkholm/examgrid/internal/store"
)

func xlsx(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

// workbooks returns 25 courses in separate semesters, one hall and two
// teachers.
func workbooks(t *testing.T) map[string][]byte {
	t.Helper()
	courses := [][]any{{"Course Code", "Course Name", "Department Name", "Class Name", "Number Of Students", "Semester"}}
	for i := 1; i <= 25; i++ {
		courses = append(courses, []any{fmt.Sprintf("C%02d", i), "Course", "CS", "A", 10, i})
	}
	return map[string][]byte{
		"courseFile": xlsx(t, courses...),
		"roomFile": xlsx(t,
			[]any{"Room ID", "Room Name", "Room Capacity", "Type"},
			[]any{"R1", "Hall", 400, "Hall"},
		),
		"teacherFile": xlsx(t,
			[]any{"Teacher ID", "Teacher Name", "Teacher Designation", "Number of Duties"},
			[]any{"T1", "Ada", "Lecturer", 50},
			[]any{"T2", "Grace", "Lecturer", 50},
		),
	}
}

func uploadRequest(t *testing.T, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".xlsx")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	svc := core.NewService(store.NewMemory(), schedule.NewGenerator(schedule.DefaultRules(), 3), cfg)
	s := NewServer(svc, cfg)
	t.Cleanup(func() { s.Shutdown(t.Context()) })
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server) string {
	t.Helper()
	rec := serve(s, uploadRequest(t, workbooks(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body)
	}
	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.Rows != 25 {
		t.Errorf("rows = %d, want 25", resp.Rows)
	}
	return resp.ID
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="teacherFile"`) {
		t.Error("index should render the upload form")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing security headers")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP should be on by default")
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/static/app.js", "/static/app.css"} {
		if rec := serve(s, httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
}

func TestUploadAndNavigate(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)

	req := httptest.NewRequest(http.MethodGet, "/schedules/"+id+"/view?page=1&action=next", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d, body %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-page="2"`) || !strings.Contains(body, "Page 2 of 3") {
		t.Errorf("next from page 1 should render page 2:\n%s", body)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("fragment has no ETag")
	}
	req = httptest.NewRequest(http.MethodGet, "/schedules/"+id+"/view?page=1&action=next", nil)
	req.Header.Set("If-None-Match", etag)
	if rec := serve(s, req); rec.Code != http.StatusNotModified {
		t.Errorf("conditional GET = %d, want 304", rec.Code)
	}

	// Prev on page 1 is ignored.
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/schedules/"+id+"/view?page=1&action=prev", nil))
	if !strings.Contains(rec.Body.String(), "Page 1 of 3") {
		t.Error("prev on the first page should stay on page 1")
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/schedules/"+id+"/view?q=c25&page=3", nil))
	body = rec.Body.String()
	if !strings.Contains(body, `data-matched="1"`) || !strings.Contains(body, `data-show-pagination="false"`) {
		t.Errorf("filtered view should have one match and no pagination:\n%s", body)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	files := workbooks(t)
	delete(files, "roomFile")

	rec := serve(s, uploadRequest(t, files))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "Please upload all required files." || resp.Code != "FILE002" {
		t.Errorf("error response = %+v", resp)
	}
}

func TestUpload_BadWorkbook(t *testing.T) {
	s := newTestServer(t, nil)
	files := workbooks(t)
	files["courseFile"] = []byte("not a workbook")

	rec := serve(s, uploadRequest(t, files))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"FILE003"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestUpload_MissingColumnNamed(t *testing.T) {
	s := newTestServer(t, nil)
	files := workbooks(t)
	files["roomFile"] = xlsx(t,
		[]any{"Room ID", "Room Name", "Type"},
		[]any{"R1", "Hall", "Hall"},
	)

	rec := serve(s, uploadRequest(t, files))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "XLS001" {
		t.Errorf("code = %q, want XLS001", resp.Code)
	}
	if !strings.Contains(resp.Error, "rooms workbook") || !strings.Contains(resp.Error, "Room Capacity") {
		t.Errorf("error = %q, want the workbook and column named", resp.Error)
	}
	if resp.Message != "A workbook is missing a required column" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestUpload_BadNumberNamesRow(t *testing.T) {
	s := newTestServer(t, nil)
	files := workbooks(t)
	files["teacherFile"] = xlsx(t,
		[]any{"Teacher ID", "Teacher Name", "Teacher Designation", "Number of Duties"},
		[]any{"T1", "Ada", "Lecturer", 5},
		[]any{"T2", "Grace", "Lecturer", "lots"},
	)

	rec := serve(s, uploadRequest(t, files))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"code":"XLS002"`, "teachers workbook", "row 3", "Number of Duties"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestUpload_TooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Upload.MaxFileSize = 512 })

	rec := serve(s, uploadRequest(t, workbooks(t)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestSchedulePage(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/schedules/"+id+"?set=duties", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Teacher Duties</h2>") {
		t.Error("duties set should render the duty roster")
	}
	if !strings.Contains(body, `/schedules/`+id+`/download.csv`) {
		t.Error("page should link the CSV download")
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/schedules/nope/view", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="alert alert-error"`) {
		t.Errorf("partial request should get an alert fragment: %s", rec.Body)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/schedules/nope", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "STO001") {
		t.Errorf("api not found = %d %s", rec.Code, rec.Body)
	}
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, nil)
	id := upload(t, s)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/schedules/"+id+"/download.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="ExamSchedule.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "Date,Timeslot,Course Code") {
		t.Errorf("csv header = %q", strings.SplitN(rec.Body.String(), "\n", 2)[0])
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/schedules/"+id+"/download.xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d", rec.Code)
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open downloaded workbook: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Schedule" || got[1] != "Duties" {
		t.Errorf("sheets = %v", got)
	}
}

func TestAPISchedule_RequiresKey(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})
	id := upload(t, s)

	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/schedules/"+id, nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/schedules/"+id, nil)
	req.Header.Set("X-API-Key", "secret")
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with key = %d", rec.Code)
	}
	var got struct {
		ID       string           `json:"id"`
		Schedule []map[string]any `json:"schedule"`
		Duties   []map[string]any `json:"duties"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != id || len(got.Schedule) != 25 || len(got.Duties) == 0 {
		t.Errorf("api schedule id %s, %d rows, %d duties", got.ID, len(got.Schedule), len(got.Duties))
	}
}

func TestUpload_RateLimited(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Rate.UploadLimit = 1 })
	upload(t, s)

	rec := serve(s, uploadRequest(t, workbooks(t)))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second upload = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if !strings.Contains(rec.Body.String(), "RATE001") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var got struct {
		Status      string             `json:"status"`
		Generations core.LimiterStatus `json:"generations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Generations.MaxConcurrent != core.DefaultMaxConcurrent {
		t.Errorf("health = %+v", got)
	}
}
