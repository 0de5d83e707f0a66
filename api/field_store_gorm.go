package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfitz/formfields/api/models"
	"github.com/ericfitz/formfields/internal/slogging"
	"gorm.io/gorm"
)

// GormFieldStore implements FieldStore using GORM
type GormFieldStore struct {
	db *gorm.DB
}

// NewGormFieldStore creates a new GORM-backed field store
func NewGormFieldStore(db *gorm.DB) *GormFieldStore {
	return &GormFieldStore{db: db}
}

// List returns every definition ordered by id
func (s *GormFieldStore) List(ctx context.Context) ([]Field, error) {
	var records []models.FieldRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	return fieldsFromRecords(records), nil
}

// Get returns the definition with id, or nil when none exists
func (s *GormFieldStore) Get(ctx context.Context, id int64) (*Field, error) {
	var rec models.FieldRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get field %d: %w", id, err)
	}
	f := fieldFromRecord(&rec)
	return &f, nil
}

// Create stores field and assigns its id
func (s *GormFieldStore) Create(ctx context.Context, field *Field) error {
	logger := slogging.Get()

	rec := fieldToRecord(field)
	rec.ID = 0
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateField
		}
		return fmt.Errorf("failed to create field: %w", err)
	}

	field.ID = rec.ID
	if field.Fields == nil {
		field.Fields = []int64{}
	}
	logger.Debug("Created field id=%d name=%s", rec.ID, rec.Name)
	return nil
}

// Update replaces the mutable attributes of the definition with id
func (s *GormFieldStore) Update(ctx context.Context, id int64, field *Field) error {
	logger := slogging.Get()

	rec := fieldToRecord(field)
	rec.ID = id
	result := s.db.WithContext(ctx).Model(&rec).
		Select("name", "type", "required", "pattern", "fields", "modified_at").
		Updates(&rec)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateField
		}
		return fmt.Errorf("failed to update field %d: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows when nothing changed
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.FieldRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check field %d: %w", id, err)
		}
		if count == 0 {
			return ErrFieldNotFound
		}
	}

	field.ID = id
	logger.Debug("Updated field id=%d name=%s", id, rec.Name)
	return nil
}

// Delete removes the definition with id
func (s *GormFieldStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FieldRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete field %d: %w", id, result.Error)
	}
	slogging.Get().Debug("Deleted field id=%d rows=%d", id, result.RowsAffected)
	return nil
}

// FindByNames returns the definitions whose name is in names. An empty
// names slice returns an empty result without querying.
func (s *GormFieldStore) FindByNames(ctx context.Context, names []string) ([]Field, error) {
	if len(names) == 0 {
		return []Field{}, nil
	}
	var records []models.FieldRecord
	if err := s.db.WithContext(ctx).Where("name IN ?", names).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find fields by name: %w", err)
	}
	return fieldsFromRecords(records), nil
}

func fieldsFromRecords(records []models.FieldRecord) []Field {
	fields := make([]Field, len(records))
	for i := range records {
		fields[i] = fieldFromRecord(&records[i])
	}
	return fields
}
