package models

// Student represents a learner registered with the college.
type Student struct {
	ID            int64  `db:"id" json:"id"`
	StudentNumber string `db:"student_number" json:"student_number"`
	FirstName     string `db:"first_name" json:"first_name"`
	LastName      string `db:"last_name" json:"last_name"`
	Email         string `db:"email" json:"email"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}

// StudentDetail is a student together with every enrolment it has ever had.
type StudentDetail struct {
	Student
	Enrolments []EnrolmentDetail `json:"enrolments"`
}
