package api

import (
	"regexp"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/ericfitz/formfields/api/validation"
)

// DefaultEmailPattern is used for email fields stored without a pattern
const DefaultEmailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

// SubmissionResult holds the outcome of validating a submission
type SubmissionResult struct {
	errors  map[string]string
	unknown []string
}

// IsValid reports whether no rule failed. Unknown scalars do not count.
func (r *SubmissionResult) IsValid() bool {
	return len(r.errors) == 0
}

// ErrorFields returns a copy of the failures keyed by dotted path
func (r *SubmissionResult) ErrorFields() map[string]string {
	out := make(map[string]string, len(r.errors))
	for k, v := range r.errors {
		out[k] = v
	}
	return out
}

// UnknownScalars lists the dotted paths of scalars under keys with no definition
func (r *SubmissionResult) UnknownScalars() []string {
	return append([]string(nil), r.unknown...)
}

// submissionValidator carries the definitions and compiled patterns of one run
type submissionValidator struct {
	defs     map[string]Field
	patterns map[string]*regexp.Regexp
	result   *SubmissionResult
}

// ValidateSubmission checks every key of payload against the definition of
// the same name. Keys without a definition are descended into when they hold
// an object or array; nested failures are reported under dotted paths.
func ValidateSubmission(defs []Field, payload *Value) *SubmissionResult {
	v := &submissionValidator{
		defs:     make(map[string]Field, len(defs)),
		patterns: make(map[string]*regexp.Regexp),
		result:   &SubmissionResult{errors: map[string]string{}},
	}
	for _, d := range defs {
		v.defs[d.Name] = d
	}
	if payload != nil && payload.Kind() == ValueObject {
		v.walkObject("", payload)
	}
	return v.result
}

func (v *submissionValidator) walkObject(prefix string, obj *Value) {
	for _, m := range obj.Members() {
		path := prefix + m.Key
		def, known := v.defs[m.Key]
		if known {
			if msg := v.check(def, m.Key, m.Value); msg != "" {
				v.result.errors[path] = msg
			}
			continue
		}
		v.walkUnknown(path, m.Value)
	}
}

func (v *submissionValidator) walkUnknown(path string, value *Value) {
	switch value.Kind() {
	case ValueObject:
		v.walkObject(path+".", value)
	case ValueArray:
		for i, elem := range value.Elements() {
			v.walkUnknown(path+"."+strconv.Itoa(i), elem)
		}
	default:
		v.result.unknown = append(v.result.unknown, path)
	}
}

// check returns the failure message for one value, or "" when it passes
func (v *submissionValidator) check(def Field, key string, value *Value) string {
	if def.Required && value.IsEmpty() {
		return capitalize(key) + " is required."
	}

	switch def.Type {
	case validation.FieldTypeDate:
		if !value.IsScalar() {
			return capitalize(key) + " is not a valid Date format."
		}
		if _, err := dateparse.ParseAny(value.Text()); err != nil {
			return capitalize(key) + " is not a valid Date format."
		}
	case validation.FieldTypeEmail:
		re := v.emailPattern(def)
		if re == nil || !value.IsScalar() || !re.MatchString(value.Text()) {
			return capitalize(key) + " is not a valid email."
		}
	}
	return ""
}

// emailPattern compiles the definition's pattern once per run; nil means
// the stored pattern does not compile
func (v *submissionValidator) emailPattern(def Field) *regexp.Regexp {
	pattern := DefaultEmailPattern
	if def.Pattern != nil && *def.Pattern != "" {
		pattern = *def.Pattern
	}
	if re, ok := v.patterns[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	v.patterns[pattern] = re
	return re
}
