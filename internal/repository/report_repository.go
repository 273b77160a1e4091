package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

// ReportRepository runs reporting queries.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const courseCapacityQuery = `SELECT
	c.code AS course_code,
	c.title AS course_title,
	o.academic_year,
	o.capacity,
	COUNT(e.id) AS active_enrolments,
	CASE WHEN o.capacity = 0 THEN 0
		ELSE ROUND(COUNT(e.id) * 100.0 / o.capacity, 2)
	END::float8 AS utilisation_percent
FROM course_offerings o
JOIN courses c ON c.id = o.course_id
LEFT JOIN enrolments e ON e.course_offering_id = o.id AND e.status = $1
WHERE o.academic_year = $2
GROUP BY o.id, c.code, c.title, o.academic_year, o.capacity
ORDER BY utilisation_percent DESC, active_enrolments DESC, c.code ASC`

// CourseCapacity returns seat usage for every offering of the academic year.
func (r *ReportRepository) CourseCapacity(ctx context.Context, academicYear string) ([]models.CapacityReportRow, error) {
	var rows []models.CapacityReportRow
	if err := r.db.SelectContext(ctx, &rows, courseCapacityQuery, models.EnrolmentStatusActive, academicYear); err != nil {
		return nil, fmt.Errorf("query course capacity report: %w", err)
	}
	return rows, nil
}
