package models

import "time"

// Audit actions recorded by the services.
const (
	AuditActionEnrol    = "ENROL"
	AuditActionWithdraw = "WITHDRAW"
	AuditActionCreate   = "CREATE"
	AuditActionSeed     = "SEED"
)

// Audited entity types.
const (
	AuditEntityEnrolment = "Enrolment"
	AuditEntityStudent   = "Student"
	AuditEntityCourse    = "Course"
	AuditEntityOffering  = "CourseOffering"
	AuditEntityDatabase  = "Database"
)

// DefaultActor is recorded when a request carries no staff identity.
const DefaultActor = "staff"

// AuditLog is an append-only audit trail record.
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	Actor      string    `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Details    string    `db:"details" json:"details"`
}

// AuditFilter scopes audit trail listings.
type AuditFilter struct {
	Action     string
	EntityType string
	Page       int
	PageSize   int
}
