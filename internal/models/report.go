package models

// CapacityReportRow describes seat usage of one offering.
type CapacityReportRow struct {
	CourseCode         string  `db:"course_code" json:"courseCode"`
	CourseTitle        string  `db:"course_title" json:"courseTitle"`
	AcademicYear       string  `db:"academic_year" json:"academicYear"`
	Capacity           int     `db:"capacity" json:"capacity"`
	ActiveEnrolments   int     `db:"active_enrolments" json:"activeEnrolments"`
	UtilisationPercent float64 `db:"utilisation_percent" json:"utilisationPercent"`
}

// ReportFormat enumerates downloadable report encodings.
type ReportFormat string

// Supported export formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)
