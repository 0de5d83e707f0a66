package api

import (
	"context"
	"fmt"

	"github.com/ericfitz/formfields/api/models"
	"github.com/ericfitz/formfields/internal/slogging"
	"gorm.io/gorm"
)

// formBatchSize caps the rows sent in one INSERT statement
const formBatchSize = 100

// GormFormStore implements FormStore using GORM
type GormFormStore struct {
	db *gorm.DB
}

// NewGormFormStore creates a new GORM-backed form store
func NewGormFormStore(db *gorm.DB) *GormFormStore {
	return &GormFormStore{db: db}
}

// CreateBatch stores every row of one submission inside a single transaction
func (s *GormFormStore) CreateBatch(ctx context.Context, rows []FormRecord) error {
	if len(rows) == 0 {
		return nil
	}
	records := formRecordsToModels(rows)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&records, formBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store submission %s: %w", rows[0].FormID, err)
	}

	slogging.Get().Debug("Stored submission form_id=%s rows=%d", rows[0].FormID, len(records))
	return nil
}

// ListByFormID returns the rows of one submission in insertion order
func (s *GormFormStore) ListByFormID(ctx context.Context, formID string) ([]FormRecord, error) {
	var records []models.FormRecord
	if err := s.db.WithContext(ctx).Where("form_id = ?", formID).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list submission %s: %w", formID, err)
	}
	return formRecordsFromModels(records), nil
}
