// Package models defines the GORM models for the formfields database schema.
// The same models are migrated on SQLite, PostgreSQL, MySQL and SQL Server.
package models

import (
	"time"
)

// FieldRecord is a stored field definition
type FieldRecord struct {
	ID         int64       `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string      `gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	Type       string      `gorm:"column:type;type:varchar(16);not null"`
	Required   bool        `gorm:"column:required;not null"`
	Pattern    *string     `gorm:"column:pattern;type:varchar(1024)"`
	Fields     FieldIDList `gorm:"column:fields"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null;autoCreateTime"`
	ModifiedAt time.Time   `gorm:"column:modified_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for FieldRecord
func (FieldRecord) TableName() string {
	return "fields"
}

// FormRecord is one flattened key/value row of a submission.
// Rows sharing a FormID belong to the same submission and are never modified.
type FormRecord struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FormID    string    `gorm:"column:form_id;type:varchar(64);not null;index"`
	Key       string    `gorm:"column:key;type:varchar(255);not null"`
	Value     string    `gorm:"column:value;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName specifies the table name for FormRecord
func (FormRecord) TableName() string {
	return "forms"
}

// AllModels returns every model for auto-migration
func AllModels() []any {
	return []any{
		&FieldRecord{},
		&FormRecord{},
	}
}
