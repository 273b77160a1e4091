package models

import "time"

// Grade letters recorded on historic results.
const (
	GradeAStar = "A*"
	GradeA     = "A"
	GradeB     = "B"
	GradeC     = "C"
	GradeD     = "D"
	GradeE     = "E"
	GradeU     = "U"
)

// MaxGradePoints is the value of the top grade, used to normalise attainment.
const MaxGradePoints = 56

// GradeScale lists every recognised grade with its fixed points, best first.
var GradeScale = []struct {
	Grade  string
	Points int
}{
	{GradeAStar, 56},
	{GradeA, 48},
	{GradeB, 40},
	{GradeC, 32},
	{GradeD, 24},
	{GradeE, 16},
	{GradeU, 0},
}

// GradePoints maps a grade letter to its points. Unrecognised grades return false.
func GradePoints(grade string) (int, bool) {
	for _, g := range GradeScale {
		if g.Grade == grade {
			return g.Points, true
		}
	}
	return 0, false
}

// IsPass reports whether a grade counts towards the pass rate. Only U fails.
func IsPass(grade string) bool {
	return grade != GradeU
}

// StudentResult is a historic outcome for one student on one course in one academic year.
type StudentResult struct {
	ID                int64     `db:"id" json:"id"`
	StudentID         int64     `db:"student_id" json:"student_id"`
	CourseID          int64     `db:"course_id" json:"course_id"`
	AcademicYear      string    `db:"academic_year" json:"academic_year"`
	FinalGrade        string    `db:"final_grade" json:"final_grade"`
	AttendancePercent float64   `db:"attendance_percent" json:"attendance_percent"`
	RecordedAt        time.Time `db:"recorded_at" json:"recorded_at"`
}

// CourseYearStat aggregates results of one course in one academic year.
type CourseYearStat struct {
	CourseID      int64   `db:"course_id"`
	AcademicYear  string  `db:"academic_year"`
	Total         int     `db:"total"`
	Passes        int     `db:"passes"`
	AvgAttendance float64 `db:"avg_attendance"`
	AvgPoints     float64 `db:"avg_points"`
}

// PassRate returns passes as a percentage of the cohort, 0 for an empty cohort.
func (s CourseYearStat) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passes) * 100.0 / float64(s.Total)
}

// OutcomeSample is a single result row reduced to what the correlation needs.
type OutcomeSample struct {
	Attendance float64 `db:"attendance"`
	Grade      string  `db:"grade"`
}
