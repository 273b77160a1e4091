package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

func TestReportRepositoryCourseCapacity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"course_code", "course_title", "academic_year", "capacity", "active_enrolments", "utilisation_percent"}).
		AddRow("ITFND", "IT Fundamentals", "2025/26", 20, 5, 25.00).
		AddRow("CS101", "Intro to Programming", "2025/26", 20, 0, 0.0)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN enrolments e ON e.course_offering_id = o.id AND e.status = $1\nWHERE o.academic_year = $2")).
		WithArgs(models.EnrolmentStatusActive, "2025/26").
		WillReturnRows(rows)

	report, err := repo.CourseCapacity(context.Background(), "2025/26")
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, 5, report[0].ActiveEnrolments)
	assert.Equal(t, 25.00, report[0].UtilisationPercent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
