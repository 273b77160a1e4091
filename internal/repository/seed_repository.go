package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

// SeedCourse is a catalogue entry seeded together with its current offering and one timetable slot.
type SeedCourse struct {
	Course   models.Course
	Offering models.CourseOffering
	Slot     models.TimetableSlot
}

// SeedEnrolment links a seeded student to the offering of a seeded course, by position.
type SeedEnrolment struct {
	StudentIndex int
	CourseIndex  int
}

// SeedResult is a historic outcome of a seeded historic student, by position.
type SeedResult struct {
	StudentIndex      int
	CourseIndex       int
	AcademicYear      string
	FinalGrade        string
	AttendancePercent float64
}

// SeedDataset is the complete demo data written by SeedRepository.Apply.
type SeedDataset struct {
	Courses          []SeedCourse
	Students         []models.Student
	Enrolments       []SeedEnrolment
	HistoricStudents []models.Student
	Results          []SeedResult
	Audit            models.AuditLog
}

// SeedRepository writes demo data.
type SeedRepository struct {
	db *sqlx.DB
}

// NewSeedRepository constructs a SeedRepository.
func NewSeedRepository(db *sqlx.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

// Apply persists the dataset in a single transaction, assigning generated ids in place.
func (r *SeedRepository) Apply(ctx context.Context, data *SeedDataset) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range data.Courses {
		sc := &data.Courses[i]
		if err = tx.QueryRowxContext(ctx, `INSERT INTO courses (code, title, level) VALUES ($1, $2, $3) RETURNING id`,
			sc.Course.Code, sc.Course.Title, sc.Course.Level).Scan(&sc.Course.ID); err != nil {
			return fmt.Errorf("seed course %s: %w", sc.Course.Code, err)
		}
		sc.Offering.CourseID = sc.Course.ID
		if err = tx.QueryRowxContext(ctx, `INSERT INTO course_offerings (course_id, academic_year, capacity) VALUES ($1, $2, $3) RETURNING id`,
			sc.Offering.CourseID, sc.Offering.AcademicYear, sc.Offering.Capacity).Scan(&sc.Offering.ID); err != nil {
			return fmt.Errorf("seed offering %s: %w", sc.Course.Code, err)
		}
		sc.Slot.CourseOfferingID = sc.Offering.ID
		if err = tx.QueryRowxContext(ctx, `INSERT INTO timetable_slots (course_offering_id, day_of_week, start_time, end_time, room) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			sc.Slot.CourseOfferingID, sc.Slot.DayOfWeek, sc.Slot.StartTime, sc.Slot.EndTime, sc.Slot.Room).Scan(&sc.Slot.ID); err != nil {
			return fmt.Errorf("seed timetable slot %s: %w", sc.Course.Code, err)
		}
	}

	for i := range data.Students {
		if err = insertStudent(ctx, tx, &data.Students[i]); err != nil {
			return fmt.Errorf("seed student %s: %w", data.Students[i].StudentNumber, err)
		}
	}
	for i := range data.HistoricStudents {
		if err = insertStudent(ctx, tx, &data.HistoricStudents[i]); err != nil {
			return fmt.Errorf("seed historic student %s: %w", data.HistoricStudents[i].StudentNumber, err)
		}
	}

	for _, e := range data.Enrolments {
		if _, err = tx.ExecContext(ctx, `INSERT INTO enrolments (student_id, course_offering_id, status, created_at) VALUES ($1, $2, $3, NOW())`,
			data.Students[e.StudentIndex].ID, data.Courses[e.CourseIndex].Offering.ID, models.EnrolmentStatusActive); err != nil {
			return fmt.Errorf("seed enrolment: %w", err)
		}
	}

	for _, res := range data.Results {
		if _, err = tx.ExecContext(ctx, `INSERT INTO student_results (student_id, course_id, academic_year, final_grade, attendance_percent, recorded_at) VALUES ($1, $2, $3, $4, $5, NOW())`,
			data.HistoricStudents[res.StudentIndex].ID, data.Courses[res.CourseIndex].Course.ID, res.AcademicYear, res.FinalGrade, res.AttendancePercent); err != nil {
			return fmt.Errorf("seed student result: %w", err)
		}
	}

	if err = insertAuditLog(ctx, tx, &data.Audit); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
