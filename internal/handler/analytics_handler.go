package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-enrolment-api/internal/middleware"
	"github.com/noah-isme/college-enrolment-api/internal/models"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
	"github.com/noah-isme/college-enrolment-api/pkg/response"
)

type analyticsService interface {
	Enabled() bool
	PassRateBySubject(ctx context.Context) ([]models.PassRateRow, bool, error)
	AverageGradePoints(ctx context.Context) ([]models.AverageGradeRow, bool, error)
	DemandForecast(ctx context.Context) (models.DemandForecast, bool, error)
	SuccessSignals(ctx context.Context) (models.SuccessSignals, bool, error)
	Anomalies(ctx context.Context) ([]models.AnomalyRow, bool, error)
	Excellence(ctx context.Context) ([]models.ExcellenceRow, bool, error)
}

// AnalyticsHandler exposes outcome analytics computed from historic results.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RequireEnabled short-circuits analytics routes while the feature is switched off.
func (h *AnalyticsHandler) RequireEnabled() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.analytics == nil || !h.analytics.Enabled() {
			response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "analytics are disabled"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// PassRate godoc
// @Summary Pass rate per course and academic year
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.PassRateRow}
// @Router /ai/outcomes/pass-rate [get]
func (h *AnalyticsHandler) PassRate(c *gin.Context) {
	rows, hit, err := h.analytics.PassRateBySubject(c.Request.Context())
	respondAnalytics(c, rows, hit, err)
}

// AverageGrade godoc
// @Summary Average grade points per course and academic year
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.AverageGradeRow}
// @Router /ai/outcomes/average-grade [get]
func (h *AnalyticsHandler) AverageGrade(c *gin.Context) {
	rows, hit, err := h.analytics.AverageGradePoints(c.Request.Context())
	respondAnalytics(c, rows, hit, err)
}

// DemandForecast godoc
// @Summary Next year's demand and recommended capacity per course
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope{data=models.DemandForecast}
// @Router /ai/demand-forecast [get]
func (h *AnalyticsHandler) DemandForecast(c *gin.Context) {
	forecast, hit, err := h.analytics.DemandForecast(c.Request.Context())
	respondAnalytics(c, forecast, hit, err)
}

// SuccessSignals godoc
// @Summary Explainable drivers of student success
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope{data=models.SuccessSignals}
// @Router /ai/success-signals [get]
func (h *AnalyticsHandler) SuccessSignals(c *gin.Context) {
	signals, hit, err := h.analytics.SuccessSignals(c.Request.Context())
	respondAnalytics(c, signals, hit, err)
}

// Anomalies godoc
// @Summary Largest year-on-year pass rate swings
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.AnomalyRow}
// @Router /ai/anomalies [get]
func (h *AnalyticsHandler) Anomalies(c *gin.Context) {
	rows, hit, err := h.analytics.Anomalies(c.Request.Context())
	respondAnalytics(c, rows, hit, err)
}

// Excellence godoc
// @Summary Course excellence ranking for the latest academic year
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.ExcellenceRow}
// @Router /ai/excellence [get]
func (h *AnalyticsHandler) Excellence(c *gin.Context) {
	rows, hit, err := h.analytics.Excellence(c.Request.Context())
	respondAnalytics(c, rows, hit, err)
}

func respondAnalytics(c *gin.Context, data interface{}, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
