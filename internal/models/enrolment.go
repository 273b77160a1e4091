package models

import "time"

// EnrolmentStatus represents the lifecycle of an enrolment.
type EnrolmentStatus string

// Possible enrolment statuses. Withdrawal flips the status and keeps the row.
const (
	EnrolmentStatusActive    EnrolmentStatus = "ACTIVE"
	EnrolmentStatusWithdrawn EnrolmentStatus = "WITHDRAWN"
)

// Enrolment links a student to a course offering.
type Enrolment struct {
	ID               int64           `db:"id" json:"id"`
	StudentID        int64           `db:"student_id" json:"student_id"`
	CourseOfferingID int64           `db:"course_offering_id" json:"course_offering_id"`
	Status           EnrolmentStatus `db:"status" json:"status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// EnrolmentDetail enriches Enrolment with the offering's course and year.
type EnrolmentDetail struct {
	Enrolment
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseTitle  string `db:"course_title" json:"course_title"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
}
