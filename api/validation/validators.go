// Package validation provides cross-database validation for formfields models.
// These validators stand in for CHECK constraints so every supported
// database enforces the same rules.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ericfitz/formfields/internal/unicodecheck"
	"github.com/microcosm-cc/bluemonday"
)

// Field types
const (
	FieldTypeText  = "text"
	FieldTypeDate  = "date"
	FieldTypeEmail = "email"
	FieldTypeGroup = "group"
)

// ValidFieldTypes are the allowed field definition types, in display order
var ValidFieldTypes = []string{FieldTypeText, FieldTypeDate, FieldTypeEmail, FieldTypeGroup}

// MaxFieldNameLength matches the width of the fields.name column
const MaxFieldNameLength = 255

// strictPolicy strips all markup; a name it alters carries HTML
var strictPolicy = bluemonday.StrictPolicy()

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// --- Enum Validators ---

// ValidateEnum checks if a value is in an allowed list
func ValidateEnum(field, value string, allowed []string) error {
	for _, v := range allowed {
		if value == v {
			return nil
		}
	}
	return NewValidationError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// ValidateFieldType validates a field definition type
func ValidateFieldType(fieldType string) error {
	return ValidateEnum("type", fieldType, ValidFieldTypes)
}

// --- String Validators ---

// ValidateNonEmpty checks that a string is not empty after trimming
func ValidateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "cannot be empty")
	}
	return nil
}

// ValidateLength checks string length constraints
func ValidateLength(field, value string, min, max int) error {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < min {
		return NewValidationError(field, fmt.Sprintf("must be at least %d characters", min))
	}
	if len(value) > max {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return nil
}

// --- Field Definition Validators ---

// ValidateFieldName rejects names that are too long, carry invisible or
// direction-changing Unicode, or contain markup
func ValidateFieldName(name string) error {
	if err := ValidateLength("name", name, 1, MaxFieldNameLength); err != nil {
		return err
	}
	if err := unicodecheck.CheckName(name); err != nil {
		return NewValidationError("name", err.Error())
	}
	if strictPolicy.Sanitize(name) != name {
		return NewValidationError("name", "contains markup")
	}
	return nil
}

// ValidatePattern checks that a pattern compiles as a regular expression
func ValidatePattern(pattern string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return NewValidationError("pattern", err.Error())
	}
	return nil
}
