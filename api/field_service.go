package api

import (
	"context"
	"errors"
	"strings"

	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/ericfitz/formfields/internal/telemetry"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"
)

// Field service messages
const (
	MsgInvalidFields  = "Invalid fields"
	MsgInvalidBody    = "Request body must be a JSON object."
	MsgFieldNotFound  = "Field not found."
	MsgInvalidPatch   = "Invalid merge patch."
	MsgPayloadInvalid = "Invalid JSON payload."
)

// Field operation names recorded in metrics
const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opPatch  = "patch"
	opDelete = "delete"
)

// FieldService validates and persists field definitions
type FieldService struct {
	store   FieldStore
	metrics *telemetry.FormMetrics
}

// NewFieldService creates a field service. metrics may be nil.
func NewFieldService(store FieldStore, metrics *telemetry.FormMetrics) *FieldService {
	return &FieldService{store: store, metrics: metrics}
}

// List returns every field definition ordered by id
func (s *FieldService) List(ctx context.Context) (fields []Field, err error) {
	defer func() { s.record(ctx, opList, err) }()

	fields, err = s.store.List(ctx)
	if err != nil {
		return nil, StoreError(err)
	}
	return fields, nil
}

// Get returns the field definition with the given id
func (s *FieldService) Get(ctx context.Context, rawID string) (field *Field, err error) {
	defer func() { s.record(ctx, opGet, err) }()

	id, err := ParseFieldID(rawID)
	if err != nil {
		return nil, err
	}
	field, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, StoreError(err)
	}
	if field == nil {
		return nil, NotFoundError(MsgFieldNotFound)
	}
	return field, nil
}

// Create validates body as a field definition and stores it
func (s *FieldService) Create(ctx context.Context, body []byte) (field *Field, err error) {
	defer func() { s.record(ctx, opCreate, err) }()

	input, err := decodeFieldInput(body)
	if err != nil {
		return nil, err
	}

	created := input.toField(0)
	if err := s.store.Create(ctx, &created); err != nil {
		return nil, mapFieldStoreError(err, input.Name)
	}
	slogging.Get().Info("Created field %d (%s, type=%s)", created.ID, created.Name, created.Type)
	return &created, nil
}

// Update replaces the field definition with the given id
func (s *FieldService) Update(ctx context.Context, rawID string, body []byte) (field *Field, err error) {
	defer func() { s.record(ctx, opUpdate, err) }()

	id, err := ParseFieldID(rawID)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, id, body)
}

// Patch applies an RFC 7386 merge patch to the stored definition and then
// validates and stores the result like Update
func (s *FieldService) Patch(ctx context.Context, rawID string, mergePatch []byte) (field *Field, err error) {
	defer func() { s.record(ctx, opPatch, err) }()

	id, err := ParseFieldID(rawID)
	if err != nil {
		return nil, err
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, StoreError(err)
	}
	if current == nil {
		return nil, NotFoundError(MsgFieldNotFound)
	}

	original, err := json.Marshal(current.input())
	if err != nil {
		return nil, err
	}
	merged, err := jsonpatch.MergePatch(original, mergePatch)
	if err != nil {
		return nil, ValidationError(MsgInvalidPatch, map[string]string{"patch": err.Error()})
	}
	return s.replace(ctx, id, merged)
}

// Delete removes the field definition with the given id
func (s *FieldService) Delete(ctx context.Context, rawID string) (result *DeleteResult, err error) {
	defer func() { s.record(ctx, opDelete, err) }()

	id, err := ParseFieldID(rawID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, StoreError(err)
	}
	slogging.Get().Info("Deleted field %d", id)
	return &DeleteResult{Removed: true}, nil
}

func (s *FieldService) replace(ctx context.Context, id int64, body []byte) (*Field, error) {
	input, err := decodeFieldInput(body)
	if err != nil {
		return nil, err
	}

	updated := input.toField(id)
	if err := s.store.Update(ctx, id, &updated); err != nil {
		return nil, mapFieldStoreError(err, input.Name)
	}
	slogging.Get().Info("Updated field %d (%s, type=%s)", id, updated.Name, updated.Type)
	return &updated, nil
}

func (s *FieldService) record(ctx context.Context, op string, err error) {
	s.metrics.RecordFieldOperation(ctx, op, outcomeOf(err))
}

// decodeFieldInput parses body and runs the required-attribute pass followed
// by the remaining definition checks
func decodeFieldInput(body []byte) (FieldInput, error) {
	payload, err := DecodePayload(body)
	if err != nil {
		return FieldInput{}, ValidationError(MsgPayloadInvalid, map[string]string{"body": strings.TrimPrefix(err.Error(), ErrInvalidPayload.Error()+": ")})
	}
	attrs, ok := payload.Interface().(map[string]any)
	if !ok {
		return FieldInput{}, ValidationError(MsgInvalidBody, nil)
	}

	if result := ValidateRequiredAttributes(RequiredFieldAttributes, attrs); !result.IsValid() {
		return FieldInput{}, ValidationError(MsgMissingFields, result.ErrorFields())
	}
	if result := ValidateFieldDefinition(attrs); !result.IsValid() {
		return FieldInput{}, ValidationError(MsgInvalidFields, result.ErrorFields())
	}

	var input FieldInput
	if err := json.Unmarshal(body, &input); err != nil {
		return FieldInput{}, ValidationError(MsgInvalidFields, map[string]string{"body": err.Error()})
	}
	return input, nil
}

func mapFieldStoreError(err error, name string) error {
	switch {
	case errors.Is(err, ErrDuplicateField):
		return ConflictError(name)
	case errors.Is(err, ErrFieldNotFound):
		return NotFoundError(MsgFieldNotFound)
	default:
		return StoreError(err)
	}
}

// outcomeOf maps a service error to its metrics outcome label
func outcomeOf(err error) string {
	if err == nil {
		return telemetry.OutcomeSuccess
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return telemetry.OutcomeStoreError
	}
	switch reqErr.Kind {
	case KindValidation:
		return telemetry.OutcomeInvalid
	case KindConflict:
		return telemetry.OutcomeConflict
	case KindNotFound:
		return telemetry.OutcomeNotFound
	default:
		return telemetry.OutcomeStoreError
	}
}
