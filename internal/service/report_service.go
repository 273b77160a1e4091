package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
	"github.com/noah-isme/college-enrolment-api/pkg/export"
)

type reportRepository interface {
	CourseCapacity(ctx context.Context, academicYear string) ([]models.CapacityReportRow, error)
}

// ReportServiceConfig tunes ReportService.
type ReportServiceConfig struct {
	DefaultAcademicYear string
	CacheTTL            time.Duration
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService answers the capacity report, from cache when possible.
type ReportService struct {
	repo    reportRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ReportServiceConfig
}

// NewReportService constructs ReportService.
func NewReportService(repo reportRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultAcademicYear == "" {
		cfg.DefaultAcademicYear = "2025/26"
	}
	return &ReportService{repo: repo, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// DefaultAcademicYear is the year used when callers omit one.
func (s *ReportService) DefaultAcademicYear() string {
	return s.cfg.DefaultAcademicYear
}

// CourseCapacity returns seat usage per offering of the year, fullest first. The boolean reports a cache hit.
func (s *ReportService) CourseCapacity(ctx context.Context, academicYear string) ([]models.CapacityReportRow, bool, error) {
	year, err := s.resolveYear(academicYear)
	if err != nil {
		return nil, false, err
	}
	rows, hit, err := cached(ctx, s.cache, capacityReportKey(year), s.cfg.CacheTTL, func(ctx context.Context) ([]models.CapacityReportRow, error) {
		start := time.Now()
		rows, err := s.repo.CourseCapacity(ctx, year)
		s.metrics.ObserveDBQuery("report_course_capacity", time.Since(start))
		if rows == nil {
			rows = []models.CapacityReportRow{}
		}
		return rows, err
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build capacity report")
	}
	return rows, hit, nil
}

// ExportCourseCapacity renders the capacity report as CSV or PDF.
func (s *ReportService) ExportCourseCapacity(ctx context.Context, academicYear string, format models.ReportFormat) (*ReportFile, error) {
	if format == "" {
		format = models.ReportFormatCSV
	}
	renderer, err := export.ForFormat(strings.ToLower(string(format)))
	if err != nil {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"), map[string]string{"format": "must be csv or pdf"})
	}
	rows, _, err := s.CourseCapacity(ctx, academicYear)
	if err != nil {
		return nil, err
	}
	year, _ := s.resolveYear(academicYear)

	body, err := renderer.Render(capacityDataset(year, rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render capacity report")
	}
	s.logger.Info("capacity report exported", zap.String("academic_year", year), zap.String("format", renderer.Extension()), zap.Int("rows", len(rows)))
	return &ReportFile{
		Filename:    fmt.Sprintf("course-capacity-%s.%s", strings.ReplaceAll(year, "/", "-"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ReportService) resolveYear(academicYear string) (string, error) {
	year := strings.TrimSpace(academicYear)
	if year == "" {
		year = s.cfg.DefaultAcademicYear
	}
	if !IsValidAcademicYear(year) {
		return "", appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid academic year"), map[string]string{"academicYear": "must look like 2025/26"})
	}
	return year, nil
}

func capacityDataset(year string, rows []models.CapacityReportRow) export.Dataset {
	data := export.Dataset{
		Title: "Course capacity " + year,
		Columns: []export.Column{
			{Key: "courseCode", Title: "Course code"},
			{Key: "courseTitle", Title: "Course title"},
			{Key: "academicYear", Title: "Academic year"},
			{Key: "capacity", Title: "Capacity", Align: "R"},
			{Key: "activeEnrolments", Title: "Active enrolments", Align: "R"},
			{Key: "utilisationPercent", Title: "Utilisation %", Align: "R"},
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"courseCode":         row.CourseCode,
			"courseTitle":        row.CourseTitle,
			"academicYear":       row.AcademicYear,
			"capacity":           strconv.Itoa(row.Capacity),
			"activeEnrolments":   strconv.Itoa(row.ActiveEnrolments),
			"utilisationPercent": strconv.FormatFloat(row.UtilisationPercent, 'f', 2, 64),
		})
	}
	return data
}
