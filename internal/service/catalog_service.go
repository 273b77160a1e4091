package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/repository"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
}

type offeringRepository interface {
	List(ctx context.Context, academicYear string) ([]models.CourseOfferingDetail, error)
	FindByID(ctx context.Context, id int64) (*models.CourseOfferingDetail, error)
	Create(ctx context.Context, offering *models.CourseOffering) error
	ListSlots(ctx context.Context, offeringID int64) ([]models.TimetableSlot, error)
	CreateSlot(ctx context.Context, slot *models.TimetableSlot) error
}

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// CreateCourseRequest is the payload for adding a course to the catalogue.
type CreateCourseRequest struct {
	Code  string `json:"code" validate:"required,max=20"`
	Title string `json:"title" validate:"required,max=200"`
	Level string `json:"level" validate:"required,max=20"`
}

// CreateOfferingRequest schedules a course for an academic year.
type CreateOfferingRequest struct {
	CourseID     int64  `json:"course_id" validate:"required,gt=0"`
	AcademicYear string `json:"academic_year" validate:"required,academic_year"`
	Capacity     int    `json:"capacity" validate:"min=1"`
}

// CreateSlotRequest adds a weekly slot to an offering. Day 0 is Sunday.
type CreateSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Room      string `json:"room" validate:"required,max=50"`
}

// CatalogService manages courses, offerings and timetables.
type CatalogService struct {
	courses     courseRepository
	offerings   offeringRepository
	audit       auditWriter
	invalidator capacityInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(courses courseRepository, offerings offeringRepository, audit auditWriter, invalidator capacityInvalidator, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{courses: courses, offerings: offerings, audit: audit, invalidator: invalidator, validator: validate, logger: logger}
}

// ListCourses returns the catalogue ordered by code.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// CreateCourse adds a course. Codes are unique.
func (s *CatalogService) CreateCourse(ctx context.Context, req CreateCourseRequest, actor string) (*models.Course, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Title = strings.TrimSpace(req.Title)
	req.Level = strings.TrimSpace(req.Level)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid course payload")
	}
	course := &models.Course{Code: req.Code, Title: req.Title, Level: req.Level}
	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.record(ctx, &models.AuditLog{
		Actor:      actorOrDefault(actor),
		Action:     models.AuditActionCreate,
		EntityType: models.AuditEntityCourse,
		EntityID:   course.Code,
		Details:    course.DisplayName() + " added",
	})
	return course, nil
}

// ListOfferings returns offerings with seat usage; an empty year lists every year.
func (s *CatalogService) ListOfferings(ctx context.Context, academicYear string) ([]models.CourseOfferingDetail, error) {
	academicYear = strings.TrimSpace(academicYear)
	if academicYear != "" && !IsValidAcademicYear(academicYear) {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid academic year"), map[string]string{"academicYear": "must look like 2025/26"})
	}
	offerings, err := s.offerings.List(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	if offerings == nil {
		offerings = []models.CourseOfferingDetail{}
	}
	return offerings, nil
}

// CreateOffering schedules a course for a year. One offering per course and year.
func (s *CatalogService) CreateOffering(ctx context.Context, req CreateOfferingRequest, actor string) (*models.CourseOfferingDetail, error) {
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid offering payload")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	offering := &models.CourseOffering{CourseID: course.ID, AcademicYear: req.AcademicYear, Capacity: req.Capacity}
	if err := s.offerings.Create(ctx, offering); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course already offered in this academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offering")
	}
	s.record(ctx, &models.AuditLog{
		Actor:      actorOrDefault(actor),
		Action:     models.AuditActionCreate,
		EntityType: models.AuditEntityOffering,
		EntityID:   course.Code + ":" + offering.AcademicYear,
		Details:    "Offered " + course.Code + " " + offering.AcademicYear,
	})
	if s.invalidator != nil {
		s.invalidator.Schedule(ctx, offering.AcademicYear)
	}
	return &models.CourseOfferingDetail{CourseOffering: *offering, CourseCode: course.Code, CourseTitle: course.Title}, nil
}

// ListTimetable returns the weekly slots of an offering.
func (s *CatalogService) ListTimetable(ctx context.Context, offeringID int64) ([]models.TimetableSlot, error) {
	if err := s.ensureOffering(ctx, offeringID); err != nil {
		return nil, err
	}
	slots, err := s.offerings.ListSlots(ctx, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if slots == nil {
		slots = []models.TimetableSlot{}
	}
	return slots, nil
}

// AddTimetableSlot attaches a weekly slot to an offering.
func (s *CatalogService) AddTimetableSlot(ctx context.Context, offeringID int64, req CreateSlotRequest) (*models.TimetableSlot, error) {
	req.Room = strings.TrimSpace(req.Room)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid timetable slot")
	}
	// zero-padded HH:MM compares correctly as text
	if req.EndTime <= req.StartTime {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid timetable slot"), map[string]string{"end_time": "must be after start_time"})
	}
	if err := s.ensureOffering(ctx, offeringID); err != nil {
		return nil, err
	}
	slot := &models.TimetableSlot{
		CourseOfferingID: offeringID,
		DayOfWeek:        req.DayOfWeek,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Room:             req.Room,
	}
	if err := s.offerings.CreateSlot(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add timetable slot")
	}
	return slot, nil
}

func (s *CatalogService) ensureOffering(ctx context.Context, id int64) error {
	if _, err := s.offerings.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	return nil
}

func (s *CatalogService) record(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Error("audit write failed", zap.String("action", entry.Action), zap.String("entity_id", entry.EntityID), zap.Error(err))
	}
}
