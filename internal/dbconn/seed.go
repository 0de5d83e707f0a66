package dbconn

import (
	"context"
	"fmt"

	"github.com/ericfitz/formfields/api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultEmailPattern is the pattern stored on the seeded email field
const DefaultEmailPattern = `[a-z0-9.]+@[a-z0-9.]+.com`

// seedGroup names the group definition and the members it lists
var seedGroup = struct {
	name    string
	members []string
}{"emergencyContact", []string{"firstName", "lastName", "email"}}

// SeedFields returns the starter scalar field definitions
func SeedFields() []models.FieldRecord {
	pattern := DefaultEmailPattern
	return []models.FieldRecord{
		{Name: "firstName", Type: "text", Required: true},
		{Name: "lastName", Type: "text", Required: true},
		{Name: "dob", Type: "date", Required: true},
		{Name: "email", Type: "email", Pattern: &pattern},
	}
}

// Seed inserts the starter field definitions, skipping any whose name already
// exists. Ids are left to the database; the group's member list is resolved
// from the stored rows.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skipExisting := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}

		fields := SeedFields()
		if err := tx.Clauses(skipExisting).Create(&fields).Error; err != nil {
			return fmt.Errorf("failed to seed fields: %w", err)
		}

		var members []models.FieldRecord
		if err := tx.Where("name IN ?", seedGroup.members).Find(&members).Error; err != nil {
			return fmt.Errorf("failed to load group members: %w", err)
		}
		byName := make(map[string]int64, len(members))
		for _, m := range members {
			byName[m.Name] = m.ID
		}
		ids := make(models.FieldIDList, 0, len(seedGroup.members))
		for _, name := range seedGroup.members {
			if id, ok := byName[name]; ok {
				ids = append(ids, id)
			}
		}

		group := models.FieldRecord{Name: seedGroup.name, Type: "group", Fields: ids}
		if err := tx.Clauses(skipExisting).Create(&group).Error; err != nil {
			return fmt.Errorf("failed to seed group field: %w", err)
		}
		return nil
	})
}
