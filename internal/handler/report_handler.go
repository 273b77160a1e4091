package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-enrolment-api/internal/middleware"
	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/service"
	"github.com/noah-isme/college-enrolment-api/pkg/response"
)

type reportService interface {
	CourseCapacity(ctx context.Context, academicYear string) ([]models.CapacityReportRow, bool, error)
	ExportCourseCapacity(ctx context.Context, academicYear string, format models.ReportFormat) (*service.ReportFile, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// CourseCapacity godoc
// @Summary Seat usage per offering, fullest first
// @Tags Reports
// @Produce json
// @Param year query string false "Academic year, defaults to the configured year"
// @Success 200 {object} response.Envelope
// @Router /reports/course-capacity [get]
func (h *ReportHandler) CourseCapacity(c *gin.Context) {
	rows, hit, err := h.reports.CourseCapacity(c.Request.Context(), c.Query("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// ExportCourseCapacity godoc
// @Summary Download the capacity report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param year query string false "Academic year"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /reports/course-capacity/export [get]
func (h *ReportHandler) ExportCourseCapacity(c *gin.Context) {
	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatCSV)))
	file, err := h.reports.ExportCourseCapacity(c.Request.Context(), c.Query("year"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
