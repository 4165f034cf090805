package schedule

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn is returned when a workbook lacks a required header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyWorkbook is returned when the first sheet has no header row.
	ErrEmptyWorkbook = errors.New("workbook has no rows")

	// ErrInvalidNumber is returned when a numeric column holds text.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrInvalidWorkbook is returned when an upload is not an Excel file.
	ErrInvalidWorkbook = errors.New("not a valid Excel workbook")
)

// Course is one row of the courses workbook.
type Course struct {
	Code       string
	Name       string
	Department string
	Class      string
	Students   int
	Semester   string
}

// Room is one row of the rooms workbook.
type Room struct {
	ID       string
	Name     string
	Capacity int
	Type     string
}

// Teacher is one row of the teachers workbook.
type Teacher struct {
	ID          string
	Name        string
	Designation string
	Duties      int
}

// Input holds the parsed contents of the three uploaded workbooks.
type Input struct {
	Courses  []Course
	Rooms    []Room
	Teachers []Teacher
}

var (
	courseColumns  = []string{"Course Code", "Course Name", "Department Name", "Class Name", "Number Of Students", "Semester"}
	roomColumns    = []string{"Room ID", "Room Name", "Room Capacity", "Type"}
	teacherColumns = []string{"Teacher ID", "Teacher Name", "Teacher Designation", "Number of Duties"}
)

// ReadInput parses the three workbooks. Errors name the workbook they came
// from.
func ReadInput(courses, rooms, teachers io.Reader) (Input, error) {
	var in Input
	var err error

	if in.Courses, err = ReadCourses(courses); err != nil {
		return Input{}, fmt.Errorf("courses workbook: %w", err)
	}
	if in.Rooms, err = ReadRooms(rooms); err != nil {
		return Input{}, fmt.Errorf("rooms workbook: %w", err)
	}
	if in.Teachers, err = ReadTeachers(teachers); err != nil {
		return Input{}, fmt.Errorf("teachers workbook: %w", err)
	}
	return in, nil
}

// ReadCourses reads the first sheet of a courses workbook.
func ReadCourses(r io.Reader) ([]Course, error) {
	sheet, err := readSheet(r, courseColumns)
	if err != nil {
		return nil, err
	}

	courses := make([]Course, 0, len(sheet.rows))
	for i, row := range sheet.rows {
		students, err := parseCount(sheet.cell(row, "Number Of Students"))
		if err != nil {
			return nil, fmt.Errorf("row %d, Number Of Students: %w", i+2, err)
		}
		courses = append(courses, Course{
			Code:       sheet.cell(row, "Course Code"),
			Name:       sheet.cell(row, "Course Name"),
			Department: sheet.cell(row, "Department Name"),
			Class:      sheet.cell(row, "Class Name"),
			Students:   students,
			Semester:   sheet.cell(row, "Semester"),
		})
	}
	return courses, nil
}

// ReadRooms reads the first sheet of a rooms workbook, dropping exact
// duplicate rows.
func ReadRooms(r io.Reader) ([]Room, error) {
	sheet, err := readSheet(r, roomColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[Room]struct{})
	rooms := make([]Room, 0, len(sheet.rows))
	for i, row := range sheet.rows {
		capacity, err := parseCount(sheet.cell(row, "Room Capacity"))
		if err != nil {
			return nil, fmt.Errorf("row %d, Room Capacity: %w", i+2, err)
		}
		room := Room{
			ID:       sheet.cell(row, "Room ID"),
			Name:     sheet.cell(row, "Room Name"),
			Capacity: capacity,
			Type:     sheet.cell(row, "Type"),
		}
		if _, dup := seen[room]; dup {
			continue
		}
		seen[room] = struct{}{}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// ReadTeachers reads the first sheet of a teachers workbook, dropping exact
// duplicate rows.
func ReadTeachers(r io.Reader) ([]Teacher, error) {
	sheet, err := readSheet(r, teacherColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[Teacher]struct{})
	teachers := make([]Teacher, 0, len(sheet.rows))
	for i, row := range sheet.rows {
		duties, err := parseCount(sheet.cell(row, "Number of Duties"))
		if err != nil {
			return nil, fmt.Errorf("row %d, Number of Duties: %w", i+2, err)
		}
		t := Teacher{
			ID:          sheet.cell(row, "Teacher ID"),
			Name:        sheet.cell(row, "Teacher Name"),
			Designation: sheet.cell(row, "Teacher Designation"),
			Duties:      duties,
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		teachers = append(teachers, t)
	}
	return teachers, nil
}

// sheetData is the first worksheet of a workbook with its header resolved.
type sheetData struct {
	columns map[string]int
	rows    [][]string
}

// cell returns the trimmed value of the named column. GetRows drops
// trailing empty cells, so short rows read as empty.
func (s sheetData) cell(row []string, column string) string {
	idx, ok := s.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func readSheet(r io.Reader, required []string) (sheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return sheetData{}, fmt.Errorf("%w: open workbook: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return sheetData{}, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return sheetData{}, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return sheetData{}, ErrEmptyWorkbook
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := columns[h]; h != "" && !dup {
			columns[h] = i
		}
	}

	var missing []string
	for _, c := range required {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return sheetData{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	data := sheetData{columns: columns}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		data.rows = append(data.rows, row)
	}
	return data, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// maxCount bounds counts read from a workbook; larger values are rejected
// rather than overflowing the int conversion.
const maxCount = math.MaxInt32

// parseCount reads a non-negative whole number. Spreadsheets often store
// counts as floats ("35.0"); an empty cell counts as zero.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q is negative", ErrInvalidNumber, s)
		}
		if n > maxCount {
			return 0, fmt.Errorf("%w: %q is too large", ErrInvalidNumber, s)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidNumber, s)
	}
	if f >= maxCount+1 {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidNumber, s)
	}
	return int(math.Floor(f)), nil
}
