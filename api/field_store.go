package api

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store errors
var (
	ErrFieldNotFound  = errors.New("field not found")
	ErrDuplicateField = errors.New("duplicate field name")
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// FieldStore persists field definitions
type FieldStore interface {
	// List returns every definition ordered by id
	List(ctx context.Context) ([]Field, error)
	// Get returns the definition with id, or nil when none exists
	Get(ctx context.Context, id int64) (*Field, error)
	// Create stores field and assigns its id
	Create(ctx context.Context, field *Field) error
	// Update replaces the mutable attributes of the definition with id
	Update(ctx context.Context, id int64, field *Field) error
	// Delete removes the definition with id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	// FindByNames returns the definitions whose name is in names
	FindByNames(ctx context.Context, names []string) ([]Field, error)
}

// FormStore persists flattened submissions
type FormStore interface {
	// CreateBatch stores every row of one submission, or none of them
	CreateBatch(ctx context.Context, rows []FormRecord) error
	// ListByFormID returns the rows of one submission in insertion order
	ListByFormID(ctx context.Context, formID string) ([]FormRecord, error)
}

// isDuplicateKeyError reports whether err is a unique constraint violation
// on any supported database
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	errMsg := err.Error()
	// PostgreSQL
	if strings.Contains(errMsg, "duplicate key value violates unique constraint") {
		return true
	}
	// MySQL
	if strings.Contains(errMsg, "Duplicate entry") {
		return true
	}
	// SQLite
	if strings.Contains(errMsg, "UNIQUE constraint failed") {
		return true
	}
	// SQL Server
	if strings.Contains(errMsg, "Cannot insert duplicate key") {
		return true
	}
	return false
}
