package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/repository"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type enrolmentRepository interface {
	EnrolWithinCapacity(ctx context.Context, params repository.EnrolParams) (*models.EnrolmentDetail, error)
	Withdraw(ctx context.Context, id int64, actor string) (*models.EnrolmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrolmentDetail, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type capacityInvalidator interface {
	Schedule(ctx context.Context, academicYear string)
}

// EnrolStudentRequest describes an enrolment attempt.
type EnrolStudentRequest struct {
	StudentID        int64 `json:"student_id" validate:"required,gt=0"`
	CourseOfferingID int64 `json:"course_offering_id" validate:"required,gt=0"`
}

// EnrolmentService enforces capacity and uniqueness when enrolling and withdrawing students.
type EnrolmentService struct {
	repo        enrolmentRepository
	students    studentReader
	invalidator capacityInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrolmentService constructs EnrolmentService.
func NewEnrolmentService(repo enrolmentRepository, students studentReader, invalidator capacityInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrolmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrolmentService{repo: repo, students: students, invalidator: invalidator, metrics: metrics, validator: validate, logger: logger}
}

// Enrol places a student on an offering. Capacity, uniqueness and the insert are decided atomically by the repository.
func (s *EnrolmentService) Enrol(ctx context.Context, req EnrolStudentRequest, actor string) (*models.EnrolmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordEnrolment(EnrolOutcomeInvalid)
		return nil, validationFailure(err, "invalid enrolment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordEnrolment(EnrolOutcomeNotFound)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		s.metrics.RecordEnrolment(EnrolOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	detail, err := s.repo.EnrolWithinCapacity(ctx, repository.EnrolParams{
		StudentID:  req.StudentID,
		OfferingID: req.CourseOfferingID,
		Actor:      actorOrDefault(actor),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOfferingNotFound):
			s.metrics.RecordEnrolment(EnrolOutcomeNotFound)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		case errors.Is(err, repository.ErrOfferingFull):
			s.metrics.RecordEnrolment(EnrolOutcomeFull)
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
		case errors.Is(err, repository.ErrEnrolmentExists):
			s.metrics.RecordEnrolment(EnrolOutcomeDuplicate)
			return nil, appErrors.Clone(appErrors.ErrDuplicateEnrolment, "")
		}
		s.metrics.RecordEnrolment(EnrolOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enrol student")
	}

	s.metrics.RecordEnrolment(EnrolOutcomeEnrolled)
	s.logger.Info("student enrolled",
		zap.Int64("student_id", detail.StudentID),
		zap.Int64("course_offering_id", detail.CourseOfferingID),
		zap.String("academic_year", detail.AcademicYear))
	if s.invalidator != nil {
		s.invalidator.Schedule(ctx, detail.AcademicYear)
	}
	return detail, nil
}

// Withdraw flips an enrolment to withdrawn. Repeating it keeps the status and appends another audit entry.
func (s *EnrolmentService) Withdraw(ctx context.Context, id int64, actor string) (*models.EnrolmentDetail, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrolment not found")
	}
	detail, err := s.repo.Withdraw(ctx, id, actorOrDefault(actor))
	if err != nil {
		if errors.Is(err, repository.ErrEnrolmentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrolment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw enrolment")
	}
	s.metrics.RecordEnrolment(EnrolOutcomeWithdrawn)
	s.logger.Info("enrolment withdrawn", zap.Int64("enrolment_id", id))
	if s.invalidator != nil {
		s.invalidator.Schedule(ctx, detail.AcademicYear)
	}
	return detail, nil
}

// ListForStudent returns the student's enrolments with course labels.
func (s *EnrolmentService) ListForStudent(ctx context.Context, studentID int64) ([]models.EnrolmentDetail, error) {
	enrolments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolments")
	}
	if enrolments == nil {
		enrolments = []models.EnrolmentDetail{}
	}
	return enrolments, nil
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return models.DefaultActor
	}
	return actor
}
