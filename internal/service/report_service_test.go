package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type mockReportRepo struct {
	rows     []models.CapacityReportRow
	err      error
	calls    int
	lastYear string
}

func (m *mockReportRepo) CourseCapacity(ctx context.Context, academicYear string) ([]models.CapacityReportRow, error) {
	m.calls++
	m.lastYear = academicYear
	return m.rows, m.err
}

func sampleCapacityRows() []models.CapacityReportRow {
	return []models.CapacityReportRow{
		{CourseCode: "ITFND", CourseTitle: "IT Fundamentals", AcademicYear: "2025/26", Capacity: 20, ActiveEnrolments: 5, UtilisationPercent: 25},
		{CourseCode: "CS101", CourseTitle: "Intro to Programming", AcademicYear: "2025/26", Capacity: 0, ActiveEnrolments: 0, UtilisationPercent: 0},
	}
}

func newReportFixture(repo *mockReportRepo) (*ReportService, *stubCacheRepo) {
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	return NewReportService(repo, cache, nil, zap.NewNop(), ReportServiceConfig{DefaultAcademicYear: "2025/26", CacheTTL: time.Minute}), cacheRepo
}

func TestReportServiceCourseCapacityDefaultsYearAndCaches(t *testing.T) {
	repo := &mockReportRepo{rows: sampleCapacityRows()}
	svc, cacheRepo := newReportFixture(repo)

	rows, hit, err := svc.CourseCapacity(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, rows, 2)
	assert.Equal(t, "2025/26", repo.lastYear)
	assert.Contains(t, cacheRepo.store, "reports:capacity:2025/26")

	rows, hit, err = svc.CourseCapacity(context.Background(), "2025/26")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 25.0, rows[0].UtilisationPercent)
	assert.Equal(t, 1, repo.calls)
}

func TestReportServiceCourseCapacityRejectsMalformedYear(t *testing.T) {
	repo := &mockReportRepo{}
	svc, _ := newReportFixture(repo)

	_, _, err := svc.CourseCapacity(context.Background(), "2025")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, repo.calls)
}

func TestReportServiceCourseCapacityEmptyYear(t *testing.T) {
	svc, _ := newReportFixture(&mockReportRepo{})

	rows, _, err := svc.CourseCapacity(context.Background(), "2030/31")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestReportServiceCourseCapacityRepositoryError(t *testing.T) {
	svc, cacheRepo := newReportFixture(&mockReportRepo{err: errors.New("timeout")})

	_, _, err := svc.CourseCapacity(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, cacheRepo.store)
}

func TestReportServiceExportCSV(t *testing.T) {
	svc, _ := newReportFixture(&mockReportRepo{rows: sampleCapacityRows()})

	file, err := svc.ExportCourseCapacity(context.Background(), "", models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "course-capacity-2025-26.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course code,Course title,Academic year,Capacity,Active enrolments,Utilisation %", lines[0])
	assert.Equal(t, "ITFND,IT Fundamentals,2025/26,20,5,25.00", lines[1])
}

func TestReportServiceExportPDF(t *testing.T) {
	svc, _ := newReportFixture(&mockReportRepo{rows: sampleCapacityRows()})

	file, err := svc.ExportCourseCapacity(context.Background(), "2025/26", models.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "course-capacity-2025-26.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestReportServiceExportUnknownFormat(t *testing.T) {
	svc, _ := newReportFixture(&mockReportRepo{})

	_, err := svc.ExportCourseCapacity(context.Background(), "", models.ReportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, "must be csv or pdf", appErrors.FromError(err).Details["format"])
}
