package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

// ResultRepository exposes read-optimised queries over historic student results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository instantiates the repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// gradePointsExpr renders the grade scale as a SQL CASE so averages are computed by the database.
// Grades outside the scale fall through to 0.
func gradePointsExpr(column string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for _, g := range models.GradeScale {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", g.Grade, g.Points)
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// CourseYearStats aggregates results per course and academic year.
func (r *ResultRepository) CourseYearStats(ctx context.Context) ([]models.CourseYearStat, error) {
	query := fmt.Sprintf(`SELECT course_id, academic_year,
COUNT(*) AS total,
SUM(CASE WHEN final_grade <> $1 THEN 1 ELSE 0 END) AS passes,
AVG(attendance_percent)::float8 AS avg_attendance,
AVG(%s)::float8 AS avg_points
FROM student_results
GROUP BY course_id, academic_year
ORDER BY academic_year, course_id`, gradePointsExpr("final_grade"))

	var stats []models.CourseYearStat
	if err := r.db.SelectContext(ctx, &stats, query, models.GradeU); err != nil {
		return nil, fmt.Errorf("query course year stats: %w", err)
	}
	return stats, nil
}

// OutcomeSamples returns attendance and grade for every result row.
func (r *ResultRepository) OutcomeSamples(ctx context.Context) ([]models.OutcomeSample, error) {
	const query = `SELECT attendance_percent::float8 AS attendance, final_grade AS grade FROM student_results ORDER BY id`
	var samples []models.OutcomeSample
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("query outcome samples: %w", err)
	}
	return samples, nil
}
