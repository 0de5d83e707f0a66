package api

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ericfitz/formfields/api/validation"
	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/ericfitz/formfields/internal/unicodecheck"
)

// RequiredFieldAttributes are the attributes every field definition must carry
var RequiredFieldAttributes = []string{"type", "name"}

// ValidationResult collects per-attribute validation messages
type ValidationResult struct {
	errors map[string]string
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{errors: map[string]string{}}
}

// IsValid reports whether no errors were recorded
func (r *ValidationResult) IsValid() bool {
	return len(r.errors) == 0
}

// ErrorFields returns a copy of the recorded messages keyed by attribute
func (r *ValidationResult) ErrorFields() map[string]string {
	out := make(map[string]string, len(r.errors))
	for k, v := range r.errors {
		out[k] = v
	}
	return out
}

// add records msg for attr unless attr already has a message
func (r *ValidationResult) add(attr, msg string) {
	if _, exists := r.errors[attr]; !exists {
		r.errors[attr] = msg
	}
}

// ValidateRequiredAttributes reports every attribute in required that is absent,
// null or an empty string in attrs.
func ValidateRequiredAttributes(required []string, attrs map[string]any) *ValidationResult {
	result := newValidationResult()
	for _, attr := range required {
		value, ok := attrs[attr]
		if !ok || value == nil {
			result.add(attr, capitalize(attr)+" is required")
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			result.add(attr, capitalize(attr)+" is required")
		}
	}
	return result
}

// ValidateFieldDefinition checks the type enum, the name's characters and
// the pattern's syntax. Callers run ValidateRequiredAttributes first; the
// checks here assume type and name are present.
func ValidateFieldDefinition(attrs map[string]any) *ValidationResult {
	result := newValidationResult()

	fieldType, ok := attrs["type"].(string)
	if !ok || validation.ValidateFieldType(fieldType) != nil {
		result.add("type", fmt.Sprintf("Type must be one of: %s", strings.Join(validation.ValidFieldTypes, ", ")))
	}

	name, isString := attrs["name"].(string)
	switch {
	case !isString:
		result.add("name", "Name must be a string")
	case utf8.RuneCountInString(name) > validation.MaxFieldNameLength:
		result.add("name", fmt.Sprintf("Name must be at most %d characters", validation.MaxFieldNameLength))
	default:
		if err := validation.ValidateFieldName(name); err != nil {
			slogging.Get().Debug("Rejected field name '%s': %v", unicodecheck.SanitizeForLogging(name), err)
			result.add("name", "Name contains invalid characters")
		}
	}

	if raw, present := attrs["pattern"]; present && raw != nil {
		pattern, ok := raw.(string)
		if !ok || validation.ValidatePattern(pattern) != nil {
			result.add("pattern", "Pattern is not a valid regular expression")
		}
	}

	return result
}

// capitalize upper-cases the first rune of s and leaves the rest untouched
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
