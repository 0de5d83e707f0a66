package api

import (
	"github.com/ericfitz/formfields/api/models"
)

// Field is a field definition as exposed to callers
type Field struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Required bool    `json:"required"`
	Pattern  *string `json:"pattern,omitempty"`
	// Fields lists member field ids of a group. It is descriptive only and
	// never consulted when validating submissions.
	Fields []int64 `json:"fields"`
}

// FieldInput is the writable subset of a Field
type FieldInput struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Required bool    `json:"required"`
	Pattern  *string `json:"pattern,omitempty"`
	Fields   []int64 `json:"fields"`
}

// FormRecord is one stored key/value row of a submission
type FormRecord struct {
	FormID string `json:"form_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// DeleteResult is returned by a successful field deletion
type DeleteResult struct {
	Removed bool `json:"removed"`
}

// toField builds the exposed Field for an input and an assigned id
func (in FieldInput) toField(id int64) Field {
	fields := in.Fields
	if fields == nil {
		fields = []int64{}
	}
	return Field{
		ID:       id,
		Name:     in.Name,
		Type:     in.Type,
		Required: in.Required,
		Pattern:  in.Pattern,
		Fields:   fields,
	}
}

// input returns the writable attributes of f
func (f Field) input() FieldInput {
	return FieldInput{
		Name:     f.Name,
		Type:     f.Type,
		Required: f.Required,
		Pattern:  f.Pattern,
		Fields:   f.Fields,
	}
}

func fieldFromRecord(rec *models.FieldRecord) Field {
	fields := []int64(rec.Fields)
	if fields == nil {
		fields = []int64{}
	}
	return Field{
		ID:       rec.ID,
		Name:     rec.Name,
		Type:     rec.Type,
		Required: rec.Required,
		Pattern:  rec.Pattern,
		Fields:   fields,
	}
}

func fieldToRecord(f *Field) models.FieldRecord {
	return models.FieldRecord{
		ID:       f.ID,
		Name:     f.Name,
		Type:     f.Type,
		Required: f.Required,
		Pattern:  f.Pattern,
		Fields:   models.FieldIDList(f.Fields),
	}
}

func formRecordsToModels(rows []FormRecord) []models.FormRecord {
	out := make([]models.FormRecord, len(rows))
	for i, r := range rows {
		out[i] = models.FormRecord{FormID: r.FormID, Key: r.Key, Value: r.Value}
	}
	return out
}

func formRecordsFromModels(rows []models.FormRecord) []FormRecord {
	out := make([]FormRecord, len(rows))
	for i, r := range rows {
		out[i] = FormRecord{FormID: r.FormID, Key: r.Key, Value: r.Value}
	}
	return out
}
