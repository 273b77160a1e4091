package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

const analyticsTracerName = "github.com/noah-isme/college-enrolment-api/internal/service/analytics"

// Cache keys of the analytics payloads.
const (
	analyticsKeyPassRate       = "analytics:pass-rate"
	analyticsKeyAverageGrade   = "analytics:average-grade"
	analyticsKeyDemandForecast = "analytics:demand-forecast"
	analyticsKeySuccessSignals = "analytics:success-signals"
	analyticsKeyAnomalies      = "analytics:anomalies"
	analyticsKeyExcellence     = "analytics:excellence"
)

// AnalyticsRepository describes the result aggregates required by AnalyticsService.
type AnalyticsRepository interface {
	CourseYearStats(ctx context.Context) ([]models.CourseYearStat, error)
	OutcomeSamples(ctx context.Context) ([]models.OutcomeSample, error)
}

type courseCatalog interface {
	ListByID(ctx context.Context) ([]models.Course, error)
}

// AnalyticsServiceConfig toggles and tunes AnalyticsService.
type AnalyticsServiceConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// AnalyticsService computes outcome analytics over historic results with cache integration.
type AnalyticsService struct {
	repo    AnalyticsRepository
	courses courseCatalog
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AnalyticsServiceConfig
	tracer  trace.Tracer
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, courses courseCatalog, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg AnalyticsServiceConfig) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:    repo,
		courses: courses,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		tracer:  otel.Tracer(analyticsTracerName),
	}
}

// Enabled reports whether the analytics feature is switched on.
func (s *AnalyticsService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// PassRateBySubject returns the pass rate per course and academic year. The boolean indicates a cache hit.
func (s *AnalyticsService) PassRateBySubject(ctx context.Context) ([]models.PassRateRow, bool, error) {
	return analyticsRun(ctx, s, "pass_rate", analyticsKeyPassRate, func(ctx context.Context) ([]models.PassRateRow, error) {
		stats, courses, err := s.loadStats(ctx)
		if err != nil {
			return nil, err
		}
		return ComputePassRates(stats, courses), nil
	})
}

// AverageGradePoints returns average grade points per course and academic year.
func (s *AnalyticsService) AverageGradePoints(ctx context.Context) ([]models.AverageGradeRow, bool, error) {
	return analyticsRun(ctx, s, "average_grade", analyticsKeyAverageGrade, func(ctx context.Context) ([]models.AverageGradeRow, error) {
		stats, courses, err := s.loadStats(ctx)
		if err != nil {
			return nil, err
		}
		return ComputeAverageGrades(stats, courses), nil
	})
}

// DemandForecast projects next year's demand and recommended capacity for every course.
func (s *AnalyticsService) DemandForecast(ctx context.Context) (models.DemandForecast, bool, error) {
	return analyticsRun(ctx, s, "demand_forecast", analyticsKeyDemandForecast, func(ctx context.Context) (models.DemandForecast, error) {
		stats, courses, err := s.loadStats(ctx)
		if err != nil {
			return models.DemandForecast{}, err
		}
		forecast := ComputeDemandForecast(stats, courses)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.StringSlice("analytics.years_used", forecast.YearsUsed),
			attribute.String("analytics.next_year", forecast.NextYear),
		)
		return forecast, nil
	})
}

// SuccessSignals correlates attendance with attainment.
func (s *AnalyticsService) SuccessSignals(ctx context.Context) (models.SuccessSignals, bool, error) {
	return analyticsRun(ctx, s, "success_signals", analyticsKeySuccessSignals, func(ctx context.Context) (models.SuccessSignals, error) {
		start := time.Now()
		samples, err := s.repo.OutcomeSamples(ctx)
		s.metrics.ObserveDBQuery("analytics_outcome_samples", time.Since(start))
		if err != nil {
			return models.SuccessSignals{}, err
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("analytics.samples", len(samples)))

		signals, unknown := ComputeSuccessSignals(samples)
		if unknown > 0 {
			s.logger.Warn("unrecognised grades counted as zero points", zap.Int("rows", unknown))
		}
		return signals, nil
	})
}

// Anomalies lists the courses whose pass rate moved most between the two latest years.
func (s *AnalyticsService) Anomalies(ctx context.Context) ([]models.AnomalyRow, bool, error) {
	return analyticsRun(ctx, s, "anomalies", analyticsKeyAnomalies, func(ctx context.Context) ([]models.AnomalyRow, error) {
		stats, courses, err := s.loadStats(ctx)
		if err != nil {
			return nil, err
		}
		return ComputeAnomalies(stats, courses), nil
	})
}

// Excellence ranks the courses of the latest academic year.
func (s *AnalyticsService) Excellence(ctx context.Context) ([]models.ExcellenceRow, bool, error) {
	return analyticsRun(ctx, s, "excellence", analyticsKeyExcellence, func(ctx context.Context) ([]models.ExcellenceRow, error) {
		stats, courses, err := s.loadStats(ctx)
		if err != nil {
			return nil, err
		}
		return ComputeExcellence(stats, courses), nil
	})
}

func (s *AnalyticsService) loadStats(ctx context.Context) ([]models.CourseYearStat, []models.Course, error) {
	start := time.Now()
	stats, err := s.repo.CourseYearStats(ctx)
	s.metrics.ObserveDBQuery("analytics_course_year_stats", time.Since(start))
	if err != nil {
		return nil, nil, err
	}

	start = time.Now()
	courses, err := s.courses.ListByID(ctx)
	s.metrics.ObserveDBQuery("analytics_courses", time.Since(start))
	if err != nil {
		return nil, nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("analytics.stats", len(stats)),
		attribute.Int("analytics.courses", len(courses)),
	)
	return stats, courses, nil
}

// analyticsRun applies the feature switch, a tracing span and the cache around compute.
func analyticsRun[T any](ctx context.Context, s *AnalyticsService, name, key string, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if !s.Enabled() {
		return zero, false, appErrors.Clone(appErrors.ErrFeatureDisabled, "analytics are disabled")
	}

	ctx, span := s.tracer.Start(ctx, "analytics."+name)
	defer span.End()

	value, hit, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, compute)
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("analytics computation failed", zap.String("analytics", name), zap.Error(err))
		return zero, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute analytics")
	}
	return value, hit, nil
}

