package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	stats       []models.CourseYearStat
	samples     []models.OutcomeSample
	statsCalls  int
	sampleCalls int
	err         error
}

func (m *mockAnalyticsRepo) CourseYearStats(ctx context.Context) ([]models.CourseYearStat, error) {
	m.statsCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func (m *mockAnalyticsRepo) OutcomeSamples(ctx context.Context) ([]models.OutcomeSample, error) {
	m.sampleCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.samples, nil
}

type stubCourseCatalog struct {
	courses []models.Course
}

func (s *stubCourseCatalog) ListByID(ctx context.Context) ([]models.Course, error) {
	return s.courses, nil
}

func newAnalyticsFixture(repo *mockAnalyticsRepo, enabled bool) (*AnalyticsService, *stubCacheRepo) {
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, &stubCourseCatalog{courses: testCourses}, cache, NewMetricsService(), zap.NewNop(), AnalyticsServiceConfig{
		Enabled:  enabled,
		CacheTTL: time.Minute,
	})
	return svc, cacheRepo
}

func TestAnalyticsServiceUsesCache(t *testing.T) {
	repo := &mockAnalyticsRepo{stats: []models.CourseYearStat{stat(1, "2024/25", 10, 8)}}
	svc, cacheRepo := newAnalyticsFixture(repo, true)

	rows, hit, err := svc.PassRateBySubject(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, rows, 1)
	assert.Equal(t, 80.0, rows[0].PassRate)
	assert.Contains(t, cacheRepo.store, analyticsKeyPassRate)

	rows, hit, err = svc.PassRateBySubject(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, rows, 1)
	assert.Equal(t, "ITFND - IT Fundamentals", rows[0].Course)
	assert.Equal(t, 1, repo.statsCalls)
}

func TestAnalyticsServiceDemandForecastRoundTripsThroughCache(t *testing.T) {
	repo := &mockAnalyticsRepo{stats: []models.CourseYearStat{stat(2, "2024/25", 20, 10)}}
	svc, _ := newAnalyticsFixture(repo, true)

	first, _, err := svc.DemandForecast(context.Background())
	require.NoError(t, err)
	second, hit, err := svc.DemandForecast(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, "2025/26", second.NextYear)
}

func TestAnalyticsServiceEmptyHistoryIsNotAnError(t *testing.T) {
	svc, _ := newAnalyticsFixture(&mockAnalyticsRepo{}, true)

	forecast, _, err := svc.DemandForecast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NextYearFallback, forecast.NextYear)

	signals, _, err := svc.SuccessSignals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InsufficientDataSignal, signals.Signals[0].Signal)

	anomalies, _, err := svc.Anomalies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	excellence, _, err := svc.Excellence(context.Background())
	require.NoError(t, err)
	assert.Empty(t, excellence)

	grades, _, err := svc.AverageGradePoints(context.Background())
	require.NoError(t, err)
	assert.Empty(t, grades)
}

func TestAnalyticsServiceDisabled(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc, _ := newAnalyticsFixture(repo, false)

	_, _, err := svc.Excellence(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrFeatureDisabled))
	assert.Zero(t, repo.statsCalls)
	assert.False(t, svc.Enabled())
}

func TestAnalyticsServiceRepositoryError(t *testing.T) {
	repo := &mockAnalyticsRepo{err: errors.New("db down")}
	svc, cacheRepo := newAnalyticsFixture(repo, true)

	_, _, err := svc.SuccessSignals(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Empty(t, cacheRepo.store)
}

func TestAnalyticsServiceWithoutCache(t *testing.T) {
	repo := &mockAnalyticsRepo{stats: []models.CourseYearStat{stat(1, "2024/25", 10, 8)}}
	svc := NewAnalyticsService(repo, &stubCourseCatalog{courses: testCourses}, nil, nil, nil, AnalyticsServiceConfig{Enabled: true})

	_, hit, err := svc.Excellence(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.Excellence(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.statsCalls)
}
