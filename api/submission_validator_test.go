package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubmission_SeededDefinitions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want map[string]string
	}{
		{
			name: "valid",
			doc:  `{"firstName":"Jane","lastName":"Doe","dob":"2020-01-01","email":"x@y.com"}`,
			want: map[string]string{},
		},
		{
			name: "missing required first name",
			doc:  `{"firstName":"","lastName":"Doe","dob":"2020-01-01","email":"x@y.com"}`,
			want: map[string]string{"firstName": "FirstName is required."},
		},
		{
			name: "bad date and email",
			doc:  `{"firstName":"Jane","lastName":"Doe","dob":"not-a-date","email":"bad"}`,
			want: map[string]string{
				"dob":   "Dob is not a valid Date format.",
				"email": "Email is not a valid email.",
			},
		},
		{
			name: "null counts as empty for required",
			doc:  `{"firstName":"Jane","lastName":null}`,
			want: map[string]string{"lastName": "LastName is required."},
		},
		{
			name: "required takes precedence over date",
			doc:  `{"dob":""}`,
			want: map[string]string{"dob": "Dob is required."},
		},
		{
			name: "object under a date key is not a date",
			doc:  `{"dob":{"y":2020}}`,
			want: map[string]string{"dob": "Dob is not a valid Date format."},
		},
		{
			name: "nested members are validated under dotted paths",
			doc:  `{"firstName":"Jane","guardian":{"firstName":"","email":"nope"}}`,
			want: map[string]string{
				"guardian.firstName": "FirstName is required.",
				"guardian.email":     "Email is not a valid email.",
			},
		},
		{
			name: "array of contacts",
			doc:  `{"contacts":[{"lastName":"Doe"},{"lastName":""}]}`,
			want: map[string]string{"contacts.1.lastName": "LastName is required."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSubmission(seededFields(), mustDecode(t, tt.doc))
			assert.Equal(t, tt.want, result.ErrorFields())
			assert.Equal(t, len(tt.want) == 0, result.IsValid())
		})
	}
}

func TestValidateSubmission_UnknownScalars(t *testing.T) {
	result := ValidateSubmission(seededFields(), mustDecode(t, `{"firstName":"Jane","nickname":"JJ","extra":{"note":"x"},"tags":["a"]}`))

	assert.True(t, result.IsValid(), "unknown scalars do not invalidate")
	assert.ElementsMatch(t, []string{"nickname", "extra.note", "tags.0"}, result.UnknownScalars())
}

func TestValidateSubmission_EmailPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern *string
		value   string
		valid   bool
	}{
		{"default pattern accepts", nil, "a@b.org", true},
		{"default pattern rejects", nil, "a@b", false},
		{"empty pattern uses default", strPtr(""), "a@b.org", true},
		{"custom pattern is unanchored", strPtr(`[a-z]+@corp`), "Jane <jane@corp>", true},
		{"custom pattern rejects", strPtr(`@corp\.com$`), "jane@other.com", false},
		{"uncompilable pattern fails the value", strPtr(`[a-z`), "a@b.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := []Field{{Name: "email", Type: "email", Pattern: tt.pattern}}
			result := ValidateSubmission(defs, mustDecode(t, `{"email":"`+tt.value+`"}`))
			assert.Equal(t, tt.valid, result.IsValid(), "errors: %v", result.ErrorFields())
		})
	}
}

func TestValidateSubmission_NonObjectEmail(t *testing.T) {
	defs := []Field{{Name: "email", Type: "email"}}
	result := ValidateSubmission(defs, mustDecode(t, `{"email":["a@b.com"]}`))

	assert.Equal(t, map[string]string{"email": "Email is not a valid email."}, result.ErrorFields())
}

func TestValidateSubmission_DateFormats(t *testing.T) {
	defs := []Field{{Name: "dob", Type: "date"}}
	for _, value := range []string{"2020-01-01", "01/02/2006", "2006-01-02T15:04:05Z", "March 7, 2019"} {
		result := ValidateSubmission(defs, mustDecode(t, `{"dob":"`+value+`"}`))
		assert.True(t, result.IsValid(), value)
	}
	for _, value := range []string{"not-a-date", "yesterday-ish"} {
		result := ValidateSubmission(defs, mustDecode(t, `{"dob":"`+value+`"}`))
		assert.False(t, result.IsValid(), value)
	}
}

func TestValidateSubmission_GroupAndTextAcceptAnything(t *testing.T) {
	defs := []Field{
		{Name: "notes", Type: "text"},
		{Name: "household", Type: "group", Fields: []int64{1, 2}},
	}
	result := ValidateSubmission(defs, mustDecode(t, `{"notes":{"free":"form"},"household":"anything"}`))

	assert.True(t, result.IsValid())
	assert.Empty(t, result.UnknownScalars())
}
