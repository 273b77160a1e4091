package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the search term ordered by student number.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	var args []interface{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		base += " WHERE (LOWER(s.student_number) LIKE $1 OR LOWER(s.first_name) LIKE $1 OR LOWER(s.last_name) LIKE $1 OR LOWER(s.email) LIKE $1)"
	}

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.student_number, s.first_name, s.last_name, s.email %s ORDER BY s.student_number LIMIT %d OFFSET %d`, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID. A missing row surfaces as sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, student_number, first_name, last_name, email FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByNumberOrEmail checks whether the student number or email is already registered.
func (r *StudentRepository) ExistsByNumberOrEmail(ctx context.Context, number, email string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE student_number = $1 OR LOWER(email) = LOWER($2) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, number, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student identity: %w", err)
	}
	return true, nil
}

// CreateWithAudit inserts the student and its audit entry atomically.
func (r *StudentRepository) CreateWithAudit(ctx context.Context, student *models.Student, entry *models.AuditLog) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin student transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertStudent(ctx, tx, student); err != nil {
		return err
	}
	if err = insertAuditLog(ctx, tx, entry); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit student: %w", err)
	}
	return nil
}

func insertStudent(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	const query = `INSERT INTO students (student_number, first_name, last_name, email) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.QueryRowxContext(ctx, query, student.StudentNumber, student.FirstName, student.LastName, student.Email).Scan(&student.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}
