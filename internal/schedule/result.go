// Package schedule builds an exam schedule from the courses, rooms and
// teachers workbooks.
//
// Generation runs in three passes: course groups get a date and timeslot,
// students are seated across rooms, and every used room is staffed with two
// invigilators. The output is two datasets ready for the view package: the
// schedule itself and the per-teacher duty roster.
package schedule

import (
	"strconv"

	"github.com/JonMunkholm/examgrid/internal/view"
)

// Schedule dataset columns, in display order.
const (
	ColDate         = "Date"
	ColTimeslot     = "Timeslot"
	ColCourseCode   = "Course Code"
	ColCourseName   = "Course Name"
	ColSemester     = "Semester"
	ColDepartment   = "Department Name"
	ColClass        = "Class Name"
	ColRoom         = "Room Name"
	ColStudents     = "Number of Students Allocated"
	ColRoomCapacity = "Room Capacity"
	ColTeacher1     = "Teacher 1"
	ColTeacher2     = "Teacher 2"
	ColTeacherName  = "Teacher Name"
	ColDutyType     = "Duty Type"
)

// Result is one generated schedule.
type Result struct {
	Schedule *view.Dataset
	Duties   *view.Dataset

	// CourseGroups is the number of distinct course sections scheduled.
	CourseGroups int

	// Unplaced counts students that did not fit in any room.
	Unplaced int
}

func newResult(allocs []allocation, duties []duty, groups, unplaced int) *Result {
	rows := make([]view.Record, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, view.NewRecord(
			view.Field{Key: ColDate, Value: a.Date},
			view.Field{Key: ColTimeslot, Value: a.Timeslot},
			view.Field{Key: ColCourseCode, Value: a.course.Code},
			view.Field{Key: ColCourseName, Value: a.course.Name},
			view.Field{Key: ColSemester, Value: semesterValue(a.course.Semester)},
			view.Field{Key: ColDepartment, Value: a.course.Department},
			view.Field{Key: ColClass, Value: a.course.Class},
			view.Field{Key: ColRoom, Value: a.room.Name},
			view.Field{Key: ColStudents, Value: int64(a.students)},
			view.Field{Key: ColRoomCapacity, Value: int64(a.room.Capacity)},
			view.Field{Key: ColTeacher1, Value: a.teacher1},
			view.Field{Key: ColTeacher2, Value: a.teacher2},
		))
	}

	roster := make([]view.Record, 0, len(duties))
	for _, d := range duties {
		roster = append(roster, view.NewRecord(
			view.Field{Key: ColDate, Value: d.Date},
			view.Field{Key: ColTimeslot, Value: d.Timeslot},
			view.Field{Key: ColRoom, Value: d.room},
			view.Field{Key: ColTeacherName, Value: d.teacher},
			view.Field{Key: ColDutyType, Value: d.kind},
		))
	}

	return &Result{
		Schedule:     view.NewDataset(rows),
		Duties:       view.NewDataset(roster),
		CourseGroups: groups,
		Unplaced:     unplaced,
	}
}

// semesterValue keeps numeric semesters numeric so they filter and export
// the way the workbook showed them. A blank semester is null.
func semesterValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
