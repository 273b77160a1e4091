package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

// EnrolmentRepository handles persistence of enrolments.
type EnrolmentRepository struct {
	db *sqlx.DB
}

// NewEnrolmentRepository constructs the repository.
func NewEnrolmentRepository(db *sqlx.DB) *EnrolmentRepository {
	return &EnrolmentRepository{db: db}
}

type lockedOffering struct {
	ID           int64  `db:"id"`
	Capacity     int    `db:"capacity"`
	AcademicYear string `db:"academic_year"`
	CourseCode   string `db:"course_code"`
	CourseTitle  string `db:"course_title"`
}

// EnrolParams describes a single enrolment attempt.
type EnrolParams struct {
	StudentID  int64
	OfferingID int64
	Actor      string
}

// EnrolWithinCapacity inserts an active enrolment and its audit entry in one transaction.
// The offering row stays locked until commit so concurrent attempts on the last seat serialise.
func (r *EnrolmentRepository) EnrolWithinCapacity(ctx context.Context, params EnrolParams) (detail *models.EnrolmentDetail, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrolment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var offering lockedOffering
	const lockQuery = `SELECT o.id, o.capacity, o.academic_year, c.code AS course_code, c.title AS course_title
FROM course_offerings o
JOIN courses c ON c.id = o.course_id
WHERE o.id = $1
FOR UPDATE OF o`
	if err = tx.GetContext(ctx, &offering, lockQuery, params.OfferingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("lock course offering: %w", err)
	}

	var active int
	const countQuery = `SELECT COUNT(*) FROM enrolments WHERE course_offering_id = $1 AND status = $2`
	if err = tx.GetContext(ctx, &active, countQuery, offering.ID, models.EnrolmentStatusActive); err != nil {
		return nil, fmt.Errorf("count active enrolments: %w", err)
	}
	if active >= offering.Capacity {
		return nil, ErrOfferingFull
	}

	var exists int
	const existsQuery = `SELECT 1 FROM enrolments WHERE student_id = $1 AND course_offering_id = $2 LIMIT 1`
	err = tx.GetContext(ctx, &exists, existsQuery, params.StudentID, offering.ID)
	switch {
	case err == nil:
		return nil, ErrEnrolmentExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("check existing enrolment: %w", err)
	}

	detail = &models.EnrolmentDetail{
		Enrolment: models.Enrolment{
			StudentID:        params.StudentID,
			CourseOfferingID: offering.ID,
			Status:           models.EnrolmentStatusActive,
		},
		CourseCode:   offering.CourseCode,
		CourseTitle:  offering.CourseTitle,
		AcademicYear: offering.AcademicYear,
	}
	const insertQuery = `INSERT INTO enrolments (student_id, course_offering_id, status, created_at)
VALUES ($1, $2, $3, NOW())
RETURNING id, created_at`
	row := tx.QueryRowxContext(ctx, insertQuery, detail.StudentID, detail.CourseOfferingID, detail.Status)
	if err = row.Scan(&detail.ID, &detail.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEnrolmentExists
		}
		return nil, fmt.Errorf("insert enrolment: %w", err)
	}

	if err = insertAuditLog(ctx, tx, &models.AuditLog{
		Actor:      params.Actor,
		Action:     models.AuditActionEnrol,
		EntityType: models.AuditEntityEnrolment,
		EntityID:   fmt.Sprintf("%d:%d", params.StudentID, offering.ID),
		Details:    fmt.Sprintf("Enrolled into %s %s", offering.CourseCode, offering.AcademicYear),
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enrolment: %w", err)
	}
	return detail, nil
}

const enrolmentDetailColumns = `e.id, e.student_id, e.course_offering_id, e.status, e.created_at,
c.code AS course_code, c.title AS course_title, o.academic_year`

// Withdraw marks an enrolment as withdrawn and records the audit entry, even when it was already withdrawn.
func (r *EnrolmentRepository) Withdraw(ctx context.Context, id int64, actor string) (detail *models.EnrolmentDetail, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin withdraw transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	detail = &models.EnrolmentDetail{}
	lockQuery := `SELECT ` + enrolmentDetailColumns + `
FROM enrolments e
JOIN course_offerings o ON o.id = e.course_offering_id
JOIN courses c ON c.id = o.course_id
WHERE e.id = $1
FOR UPDATE OF e`
	if err = tx.GetContext(ctx, detail, lockQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnrolmentNotFound
		}
		return nil, fmt.Errorf("lock enrolment: %w", err)
	}

	const updateQuery = `UPDATE enrolments SET status = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, id, models.EnrolmentStatusWithdrawn); err != nil {
		return nil, fmt.Errorf("withdraw enrolment: %w", err)
	}
	detail.Status = models.EnrolmentStatusWithdrawn

	if err = insertAuditLog(ctx, tx, &models.AuditLog{
		Actor:      actor,
		Action:     models.AuditActionWithdraw,
		EntityType: models.AuditEntityEnrolment,
		EntityID:   strconv.FormatInt(id, 10),
		Details:    fmt.Sprintf("Withdrawn from %s %s", detail.CourseCode, detail.AcademicYear),
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit withdrawal: %w", err)
	}
	return detail, nil
}

// ListByStudent returns every enrolment of a student, active and withdrawn.
func (r *EnrolmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrolmentDetail, error) {
	query := `SELECT ` + enrolmentDetailColumns + `
FROM enrolments e
JOIN course_offerings o ON o.id = e.course_offering_id
JOIN courses c ON c.id = o.course_id
WHERE e.student_id = $1
ORDER BY o.academic_year DESC, c.code`
	var enrolments []models.EnrolmentDetail
	if err := r.db.SelectContext(ctx, &enrolments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrolments: %w", err)
	}
	return enrolments, nil
}
