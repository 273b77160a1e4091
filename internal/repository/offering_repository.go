package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

// OfferingRepository persists course offerings and their timetable slots.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringDetailQuery = `SELECT o.id, o.course_id, o.academic_year, o.capacity,
c.code AS course_code, c.title AS course_title,
COUNT(e.id) AS active_enrolments
FROM course_offerings o
JOIN courses c ON c.id = o.course_id
LEFT JOIN enrolments e ON e.course_offering_id = o.id AND e.status = $1`

// List returns offerings with seat usage, optionally restricted to one academic year.
func (r *OfferingRepository) List(ctx context.Context, academicYear string) ([]models.CourseOfferingDetail, error) {
	query := offeringDetailQuery
	args := []interface{}{models.EnrolmentStatusActive}
	if academicYear != "" {
		args = append(args, academicYear)
		query += fmt.Sprintf(" WHERE o.academic_year = $%d", len(args))
	}
	query += " GROUP BY o.id, c.code, c.title ORDER BY o.academic_year DESC, c.code"

	var offerings []models.CourseOfferingDetail
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list course offerings: %w", err)
	}
	return offerings, nil
}

// FindByID fetches an offering with its seat usage. A missing row surfaces as sql.ErrNoRows.
func (r *OfferingRepository) FindByID(ctx context.Context, id int64) (*models.CourseOfferingDetail, error) {
	query := offeringDetailQuery + " WHERE o.id = $2 GROUP BY o.id, c.code, c.title"
	var offering models.CourseOfferingDetail
	if err := r.db.GetContext(ctx, &offering, query, models.EnrolmentStatusActive, id); err != nil {
		return nil, err
	}
	return &offering, nil
}

// Create inserts an offering. A second offering of the same course and year yields ErrDuplicateKey.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	const query = `INSERT INTO course_offerings (course_id, academic_year, capacity) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, offering.CourseID, offering.AcademicYear, offering.Capacity).Scan(&offering.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create course offering: %w", err)
	}
	return nil
}

// ListSlots returns the weekly timetable of an offering.
func (r *OfferingRepository) ListSlots(ctx context.Context, offeringID int64) ([]models.TimetableSlot, error) {
	const query = `SELECT id, course_offering_id, day_of_week, TO_CHAR(start_time, 'HH24:MI') AS start_time, TO_CHAR(end_time, 'HH24:MI') AS end_time, room
FROM timetable_slots WHERE course_offering_id = $1 ORDER BY day_of_week, start_time`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, offeringID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// CreateSlot inserts a timetable slot.
func (r *OfferingRepository) CreateSlot(ctx context.Context, slot *models.TimetableSlot) error {
	const query = `INSERT INTO timetable_slots (course_offering_id, day_of_week, start_time, end_time, room) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, slot.CourseOfferingID, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.Room).Scan(&slot.ID); err != nil {
		return fmt.Errorf("create timetable slot: %w", err)
	}
	return nil
}
