package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors raised by the enrolment rules. Services translate them into typed API errors.
var (
	ErrOfferingNotFound  = errors.New("course offering not found")
	ErrOfferingFull      = errors.New("course offering is full")
	ErrEnrolmentExists   = errors.New("enrolment already exists")
	ErrEnrolmentNotFound = errors.New("enrolment not found")
	ErrDuplicateKey      = errors.New("duplicate key")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint failure.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
