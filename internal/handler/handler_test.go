package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-enrolment-api/internal/middleware"
	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/service"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type enrolmentServiceMock struct {
	err       error
	lastReq   service.EnrolStudentRequest
	lastActor string
}

func (m *enrolmentServiceMock) Enrol(ctx context.Context, req service.EnrolStudentRequest, actor string) (*models.EnrolmentDetail, error) {
	m.lastReq, m.lastActor = req, actor
	if m.err != nil {
		return nil, m.err
	}
	return &models.EnrolmentDetail{Enrolment: models.Enrolment{ID: 3, StudentID: req.StudentID, CourseOfferingID: req.CourseOfferingID, Status: models.EnrolmentStatusActive}}, nil
}

func (m *enrolmentServiceMock) Withdraw(ctx context.Context, id int64, actor string) (*models.EnrolmentDetail, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &models.EnrolmentDetail{Enrolment: models.Enrolment{ID: id, Status: models.EnrolmentStatusWithdrawn}}, nil
}

func TestEnrolmentHandlerEnrol(t *testing.T) {
	svc := &enrolmentServiceMock{}
	h := NewEnrolmentHandler(svc)

	c, w := newGinContext(http.MethodPost, "/enrolments", []byte(`{"student_id":1,"course_offering_id":2}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Name: "registry"})
	h.Enrol(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.EnrolStudentRequest{StudentID: 1, CourseOfferingID: 2}, svc.lastReq)
	assert.Equal(t, "registry", svc.lastActor)

	var detail models.EnrolmentDetail
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &detail))
	assert.Equal(t, models.EnrolmentStatusActive, detail.Status)
}

func TestEnrolmentHandlerCapacityExceeded(t *testing.T) {
	h := NewEnrolmentHandler(&enrolmentServiceMock{err: appErrors.Clone(appErrors.ErrCapacityExceeded, "")})

	c, w := newGinContext(http.MethodPost, "/enrolments", []byte(`{"student_id":1,"course_offering_id":2}`))
	h.Enrol(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CAPACITY_EXCEEDED", env.Error.Code)
}

func TestEnrolmentHandlerMalformedBody(t *testing.T) {
	svc := &enrolmentServiceMock{}
	h := NewEnrolmentHandler(svc)

	c, w := newGinContext(http.MethodPost, "/enrolments", []byte(`{"student_id":"one"}`))
	h.Enrol(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
}

func TestEnrolmentHandlerWithdraw(t *testing.T) {
	svc := &enrolmentServiceMock{}
	h := NewEnrolmentHandler(svc)

	c, w := newGinContext(http.MethodPost, "/enrolments/9/withdraw", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Withdraw(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultActor, svc.lastActor)

	c, w = newGinContext(http.MethodPost, "/enrolments/abc/withdraw", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Withdraw(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a positive integer", decode(t, w).Error.Details["id"])
}

type studentServiceMock struct {
	filter models.StudentFilter
	err    error
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	m.filter = filter
	return []models.Student{{ID: 1, StudentNumber: "S000001"}}, &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11}, nil
}

func (m *studentServiceMock) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.StudentDetail{Student: models.Student{ID: id}, Enrolments: []models.EnrolmentDetail{}}, nil
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest, actor string) (*models.Student, error) {
	return &models.Student{ID: 5, StudentNumber: req.StudentNumber}, nil
}

func TestStudentHandlerList(t *testing.T) {
	svc := &studentServiceMock{}
	h := NewStudentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/students?q=khan&page=2&limit=10", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StudentFilter{Search: "khan", Page: 2, PageSize: 10}, svc.filter)
	assert.Equal(t, 11, decode(t, w).Pagination.TotalCount)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	h := NewStudentHandler(&studentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")})

	c, w := newGinContext(http.MethodGet, "/students/4", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerCreate(t *testing.T) {
	h := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodPost, "/students", []byte(`{"student_number":"S000003","first_name":"A","last_name":"B","email":"a@b.test"}`))
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

type reportServiceMock struct {
	rows   []models.CapacityReportRow
	hit    bool
	file   *service.ReportFile
	err    error
	year   string
	format models.ReportFormat
}

func (m *reportServiceMock) CourseCapacity(ctx context.Context, academicYear string) ([]models.CapacityReportRow, bool, error) {
	m.year = academicYear
	return m.rows, m.hit, m.err
}

func (m *reportServiceMock) ExportCourseCapacity(ctx context.Context, academicYear string, format models.ReportFormat) (*service.ReportFile, error) {
	m.year, m.format = academicYear, format
	return m.file, m.err
}

func TestReportHandlerCourseCapacity(t *testing.T) {
	svc := &reportServiceMock{rows: []models.CapacityReportRow{{CourseCode: "ITFND", Capacity: 20, ActiveEnrolments: 5, UtilisationPercent: 25}}, hit: true}
	h := NewReportHandler(svc)

	c, w := newGinContext(http.MethodGet, "/reports/course-capacity?year=2025/26", nil)
	h.CourseCapacity(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025/26", svc.year)
	env := decode(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "ITFND", rows[0]["courseCode"])
	assert.Equal(t, 25.0, rows[0]["utilisationPercent"])
}

func TestReportHandlerExport(t *testing.T) {
	svc := &reportServiceMock{file: &service.ReportFile{Filename: "course-capacity-2025-26.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}}
	h := NewReportHandler(svc)

	c, w := newGinContext(http.MethodGet, "/reports/course-capacity/export", nil)
	h.ExportCourseCapacity(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ReportFormatCSV, svc.format)
	assert.Equal(t, "attachment; filename=course-capacity-2025-26.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

type analyticsServiceMock struct {
	enabled bool
	err     error
}

func (m *analyticsServiceMock) Enabled() bool { return m.enabled }

func (m *analyticsServiceMock) PassRateBySubject(ctx context.Context) ([]models.PassRateRow, bool, error) {
	return []models.PassRateRow{{AcademicYear: "2024/25", Course: "ITFND - IT Fundamentals", PassRate: 80, CohortSize: 10}}, false, m.err
}

func (m *analyticsServiceMock) AverageGradePoints(ctx context.Context) ([]models.AverageGradeRow, bool, error) {
	return []models.AverageGradeRow{}, false, m.err
}

func (m *analyticsServiceMock) DemandForecast(ctx context.Context) (models.DemandForecast, bool, error) {
	return models.DemandForecast{YearsUsed: []string{}, NextYear: "Next year", Data: []models.CourseDemandForecast{}}, true, m.err
}

func (m *analyticsServiceMock) SuccessSignals(ctx context.Context) (models.SuccessSignals, bool, error) {
	return models.SuccessSignals{Signals: []models.Signal{{Signal: "More data needed"}}}, false, m.err
}

func (m *analyticsServiceMock) Anomalies(ctx context.Context) ([]models.AnomalyRow, bool, error) {
	return []models.AnomalyRow{}, false, m.err
}

func (m *analyticsServiceMock) Excellence(ctx context.Context) ([]models.ExcellenceRow, bool, error) {
	return []models.ExcellenceRow{}, false, m.err
}

func analyticsRouter(svc analyticsService) *gin.Engine {
	h := NewAnalyticsHandler(svc)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	ai := r.Group("/ai", h.RequireEnabled())
	ai.GET("/outcomes/pass-rate", h.PassRate)
	ai.GET("/demand-forecast", h.DemandForecast)
	ai.GET("/success-signals", h.SuccessSignals)
	return r
}

func TestAnalyticsHandlerShapes(t *testing.T) {
	r := analyticsRouter(&analyticsServiceMock{enabled: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai/demand-forecast", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.JSONEq(t, `{"yearsUsed":[],"nextYear":"Next year","data":[]}`, string(env.Data))
	assert.Equal(t, true, env.Meta["cache_hit"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai/outcomes/pass-rate", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"academicYear":"2024/25","course":"ITFND - IT Fundamentals","passRate":80,"avgAttendance":0,"cohortSize":10}]`, string(decode(t, w).Data))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai/success-signals", nil))
	assert.JSONEq(t, `{"correlationAttendance":0,"signals":[{"signal":"More data needed","score":0}]}`, string(decode(t, w).Data))
}

func TestAnalyticsHandlerDisabled(t *testing.T) {
	r := analyticsRouter(&analyticsServiceMock{enabled: false})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai/outcomes/pass-rate", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FEATURE_DISABLED", decode(t, w).Error.Code)
}

func TestAnalyticsHandlerError(t *testing.T) {
	r := analyticsRouter(&analyticsServiceMock{enabled: true, err: appErrors.Wrap(errors.New("db"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute analytics")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai/outcomes/pass-rate", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type auditServiceMock struct {
	filter models.AuditFilter
}

func (m *auditServiceMock) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	m.filter = filter
	return []models.AuditLog{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func TestAuditHandlerList(t *testing.T) {
	svc := &auditServiceMock{}
	h := NewAuditHandler(svc)

	c, w := newGinContext(http.MethodGet, "/audit-logs?action=enrol&entityType=Enrolment&limit=5", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AuditFilter{Action: "ENROL", EntityType: "Enrolment", PageSize: 5}, svc.filter)
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{err: errors.New("down")}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(service.NewMetricsService(), nil).Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")
}
