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

type enrolmentService interface {
	Enrol(ctx context.Context, req service.EnrolStudentRequest, actor string) (*models.EnrolmentDetail, error)
	Withdraw(ctx context.Context, id int64, actor string) (*models.EnrolmentDetail, error)
}

// EnrolmentHandler exposes enrolment mutations.
type EnrolmentHandler struct {
	enrolments enrolmentService
}

// NewEnrolmentHandler constructs EnrolmentHandler.
func NewEnrolmentHandler(enrolments enrolmentService) *EnrolmentHandler {
	return &EnrolmentHandler{enrolments: enrolments}
}

// Enrol godoc
// @Summary Enrol a student on a course offering
// @Tags Enrolments
// @Accept json
// @Produce json
// @Param payload body service.EnrolStudentRequest true "Enrolment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope "CAPACITY_EXCEEDED or DUPLICATE_ENROLMENT"
// @Router /enrolments [post]
func (h *EnrolmentHandler) Enrol(c *gin.Context) {
	var req service.EnrolStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrolment, err := h.enrolments.Enrol(c.Request.Context(), req, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrolment)
}

// Withdraw godoc
// @Summary Withdraw an enrolment
// @Tags Enrolments
// @Produce json
// @Param id path int true "Enrolment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrolments/{id}/withdraw [post]
func (h *EnrolmentHandler) Withdraw(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	enrolment, err := h.enrolments.Withdraw(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrolment, nil)
}
