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

type catalogService interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	CreateCourse(ctx context.Context, req service.CreateCourseRequest, actor string) (*models.Course, error)
	ListOfferings(ctx context.Context, academicYear string) ([]models.CourseOfferingDetail, error)
	CreateOffering(ctx context.Context, req service.CreateOfferingRequest, actor string) (*models.CourseOfferingDetail, error)
	ListTimetable(ctx context.Context, offeringID int64) ([]models.TimetableSlot, error)
	AddTimetableSlot(ctx context.Context, offeringID int64, req service.CreateSlotRequest) (*models.TimetableSlot, error)
}

// CatalogHandler exposes courses, offerings and timetables.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalogue
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// ListOfferings godoc
// @Summary List course offerings with seat usage
// @Tags Catalogue
// @Produce json
// @Param academicYear query string false "Academic year, e.g. 2025/26"
// @Success 200 {object} response.Envelope
// @Router /offerings [get]
func (h *CatalogHandler) ListOfferings(c *gin.Context) {
	offerings, err := h.catalog.ListOfferings(c.Request.Context(), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// CreateOffering godoc
// @Summary Offer a course in an academic year
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param payload body service.CreateOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Router /offerings [post]
func (h *CatalogHandler) CreateOffering(c *gin.Context) {
	var req service.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	offering, err := h.catalog.CreateOffering(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

// ListTimetable godoc
// @Summary List timetable slots of an offering
// @Tags Catalogue
// @Produce json
// @Param id path int true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{id}/timetable [get]
func (h *CatalogHandler) ListTimetable(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.catalog.ListTimetable(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// AddTimetableSlot godoc
// @Summary Add a weekly slot to an offering
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param id path int true "Offering ID"
// @Param payload body service.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /offerings/{id}/timetable [post]
func (h *CatalogHandler) AddTimetableSlot(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	slot, err := h.catalog.AddTimetableSlot(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}
