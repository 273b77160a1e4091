package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/repository"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByNumberOrEmail(ctx context.Context, number, email string) (bool, error)
	CreateWithAudit(ctx context.Context, student *models.Student, entry *models.AuditLog) error
}

type studentEnrolmentReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrolmentDetail, error)
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	StudentNumber string `json:"student_number" validate:"required,max=20"`
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email,max=255"`
}

// StudentService manages the student registry.
type StudentService struct {
	repo       studentRepository
	enrolments studentEnrolmentReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, enrolments studentEnrolmentReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, enrolments: enrolments, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns the student together with its enrolment history.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	enrolments, err := s.enrolments.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolments")
	}
	if enrolments == nil {
		enrolments = []models.EnrolmentDetail{}
	}
	return &models.StudentDetail{Student: *student, Enrolments: enrolments}, nil
}

// Create registers a student and records a CREATE audit entry.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest, actor string) (*models.Student, error) {
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid student payload")
	}

	exists, err := s.repo.ExistsByNumberOrEmail(ctx, req.StudentNumber, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number or email already exists")
	}

	student := &models.Student{
		StudentNumber: req.StudentNumber,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
	}
	entry := &models.AuditLog{
		Actor:      actorOrDefault(actor),
		Action:     models.AuditActionCreate,
		EntityType: models.AuditEntityStudent,
		EntityID:   student.StudentNumber,
		Details:    fmt.Sprintf("%s %s registered", student.FirstName, student.LastName),
	}
	if err := s.repo.CreateWithAudit(ctx, student, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student registered", zap.Int64("student_id", student.ID), zap.String("student_number", student.StudentNumber))
	return student, nil
}
