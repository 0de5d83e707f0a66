// Package models - hooks.go contains GORM lifecycle hooks for validation.
// These hooks stand in for CHECK constraints so every supported database
// enforces the same rules.
package models

import (
	"github.com/ericfitz/formfields/api/validation"
	"gorm.io/gorm"
)

// BeforeSave validates FieldRecord before create or update
func (f *FieldRecord) BeforeSave(tx *gorm.DB) error {
	if err := validation.ValidateNonEmpty("name", f.Name); err != nil {
		return err
	}
	if err := validation.ValidateEnum("type", f.Type, validation.ValidFieldTypes); err != nil {
		return err
	}
	if f.Fields == nil {
		f.Fields = FieldIDList{}
	}
	return nil
}

// BeforeCreate validates FormRecord before insert
func (r *FormRecord) BeforeCreate(tx *gorm.DB) error {
	if err := validation.ValidateNonEmpty("form_id", r.FormID); err != nil {
		return err
	}
	return validation.ValidateNonEmpty("key", r.Key)
}
