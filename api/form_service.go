package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/ericfitz/formfields/internal/telemetry"
	"github.com/ericfitz/formfields/internal/uuidgen"
)

// Form service messages
const (
	MsgFormNotFound     = "Form not found."
	MsgFormIDRequired   = "Form Id required."
	MsgSubmissionObject = "Submission must be a JSON object."
	MsgSubmissionEmpty  = "Submission must contain at least one field."
)

// FormService validates submissions against stored field definitions and
// persists them as flattened rows
type FormService struct {
	fields  FieldStore
	forms   FormStore
	ids     uuidgen.Generator
	metrics *telemetry.FormMetrics
}

// NewFormService creates a form service. metrics may be nil.
func NewFormService(fields FieldStore, forms FormStore, ids uuidgen.Generator, metrics *telemetry.FormMetrics) *FormService {
	return &FormService{fields: fields, forms: forms, ids: ids, metrics: metrics}
}

// Submit validates payload and stores it under a new form id. The returned
// object mirrors what was stored, with nested branches as their JSON text,
// plus an "id" member holding the form id.
func (s *FormService) Submit(ctx context.Context, payload *Value) (saved *Value, err error) {
	start := time.Now()
	fieldErrors := 0
	defer func() {
		s.metrics.RecordSubmission(ctx, outcomeOf(err), fieldErrors, time.Since(start))
	}()

	logger := slogging.Get()
	if payload == nil || payload.Kind() != ValueObject {
		return nil, ValidationError(MsgSubmissionObject, nil)
	}
	// an empty object would get an id that no stored row carries
	if len(payload.Members()) == 0 {
		return nil, ValidationError(MsgSubmissionEmpty, nil)
	}

	names := ExtractLeafNames(payload)
	defs, err := s.fields.FindByNames(ctx, names)
	if err != nil {
		return nil, StoreError(err)
	}

	result := ValidateSubmission(defs, payload)
	if unknown := result.UnknownScalars(); len(unknown) > 0 {
		logger.DebugCtx(ctx, "Submission has values without a field definition",
			slog.String("paths", strings.Join(unknown, ",")))
	}
	if !result.IsValid() {
		collection := result.ErrorFields()
		fieldErrors = len(collection)
		return nil, SubmissionError(collection)
	}

	formID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate form id: %w", err)
	}

	rows, err := Flatten(payload, formID)
	if err != nil {
		return nil, ValidationError(MsgSubmissionObject, nil)
	}
	if err := s.forms.CreateBatch(ctx, rows); err != nil {
		return nil, StoreError(err)
	}

	logger.InfoCtx(ctx, "Stored submission",
		slog.String("form_id", formID),
		slog.Int("rows", len(rows)),
	)
	return storedView(payload, rows, formID), nil
}

// Get returns the stored rows of one submission
func (s *FormService) Get(ctx context.Context, formID string) ([]FormRecord, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return nil, ValidationError(MsgFormIDRequired, nil)
	}
	rows, err := s.forms.ListByFormID(ctx, formID)
	if err != nil {
		return nil, StoreError(err)
	}
	if len(rows) == 0 {
		return nil, NotFoundError(MsgFormNotFound)
	}
	return rows, nil
}

// storedView rebuilds the submission as stored: scalars keep their type and
// branches become the JSON text that was persisted
func storedView(payload *Value, rows []FormRecord, formID string) *Value {
	view := NewObject()
	for i, m := range payload.Members() {
		if m.Value.IsScalar() {
			view.Set(m.Key, m.Value.Clone())
			continue
		}
		view.Set(m.Key, NewString(rows[i].Value))
	}
	view.Set("id", NewString(formID))
	return view
}
