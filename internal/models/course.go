package models

import "fmt"

// Course is a catalogue entry such as "CS101 - Intro to Programming".
type Course struct {
	ID    int64  `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Title string `db:"title" json:"title"`
	Level string `db:"level" json:"level"`
}

// DisplayName renders the label used by reports and analytics.
func (c Course) DisplayName() string {
	return fmt.Sprintf("%s - %s", c.Code, c.Title)
}

// CourseOffering is a course scheduled for one academic year with a seat limit.
type CourseOffering struct {
	ID           int64  `db:"id" json:"id"`
	CourseID     int64  `db:"course_id" json:"course_id"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
	Capacity     int    `db:"capacity" json:"capacity"`
}

// CourseOfferingDetail enriches an offering with course labels and its active seat usage.
type CourseOfferingDetail struct {
	CourseOffering
	CourseCode       string `db:"course_code" json:"course_code"`
	CourseTitle      string `db:"course_title" json:"course_title"`
	ActiveEnrolments int    `db:"active_enrolments" json:"active_enrolments"`
}

// TimetableSlot is a weekly teaching slot of an offering. Times use "HH:MM".
type TimetableSlot struct {
	ID               int64  `db:"id" json:"id"`
	CourseOfferingID int64  `db:"course_offering_id" json:"course_offering_id"`
	DayOfWeek        int    `db:"day_of_week" json:"day_of_week"`
	StartTime        string `db:"start_time" json:"start_time"`
	EndTime          string `db:"end_time" json:"end_time"`
	Room             string `db:"room" json:"room"`
}
