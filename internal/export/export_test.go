package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/examgrid/internal/view"
)

func sample() *view.Dataset {
	return view.NewDataset([]view.Record{
		view.NewRecord(
			view.Field{Key: "Course Code", Value: "CS101"},
			view.Field{Key: "Course Name", Value: "Intro, Programming"},
			view.Field{Key: "Students", Value: int64(45)},
			view.Field{Key: "Semester", Value: nil},
		),
		view.NewRecord(
			view.Field{Key: "Course Code", Value: "MTH\"2\""},
			view.Field{Key: "Course Name", Value: "Calculus"},
			view.Field{Key: "Students", Value: 12.5},
		),
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := strings.Join([]string{
		"Course Code,Course Name,Students,Semester",
		`CS101,"Intro, Programming",45,`,
		`"MTH""2""",Calculus,12.5,`,
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, view.NewDataset(nil)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty dataset wrote %q", buf.String())
	}
}

func TestReadCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	ds, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}
	first := ds.At(0)
	if v, _ := first.Get("Students"); v != int64(45) {
		t.Errorf("Students = %#v, want int64(45)", v)
	}
	if v, ok := first.Get("Semester"); !ok || v != nil {
		t.Errorf("Semester = %#v, want null", v)
	}
	if v, _ := ds.At(1).Get("Course Code"); v != `MTH"2"` {
		t.Errorf("Course Code = %#v", v)
	}
	if got := ds.Columns(); strings.Join(got, "|") != "Course Code|Course Name|Students|Semester" {
		t.Errorf("Columns() = %v", got)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(""))
	if err != nil || ds.Len() != 0 {
		t.Errorf("empty input: %v, %d rows", err, ds.Len())
	}

	if _, err := ReadCSV(strings.NewReader("a,b\n1\n")); err == nil {
		t.Error("short row should fail")
	}
}

func TestWriteXLSX(t *testing.T) {
	duties := view.NewDataset([]view.Record{
		view.NewRecord(view.Field{Key: "Teacher Name", Value: "Ada"}),
	})

	var buf bytes.Buffer
	err := WriteXLSX(&buf, Sheet{Name: "Schedule", Data: sample()}, Sheet{Name: "Duties", Data: duties})
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Schedule" || got[1] != "Duties" {
		t.Fatalf("sheets = %v", got)
	}

	rows, err := f.GetRows("Schedule")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Course Code" || rows[1][2] != "45" || rows[2][1] != "Calculus" {
		t.Errorf("unexpected cells: %v", rows)
	}

	cell, err := f.GetCellValue("Duties", "A2")
	if err != nil || cell != "Ada" {
		t.Errorf("Duties!A2 = %q, %v", cell, err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{".XLSX", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	if FormatXLSX.Filename() != "ExamSchedule.xlsx" {
		t.Errorf("Filename() = %q", FormatXLSX.Filename())
	}
}

func TestETag(t *testing.T) {
	a := ETag([]byte("schedule"))
	if a != ETag([]byte("schedule")) {
		t.Error("ETag not stable")
	}
	if a == ETag([]byte("schedule2")) {
		t.Error("ETag collided for different bodies")
	}
	if len(a) != 18 || a[0] != '"' || a[17] != '"' {
		t.Errorf("ETag() = %s, want quoted 16 hex digits", a)
	}
}
