package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Dialect constants for database type detection
const (
	dialectPostgres  = "postgres"
	dialectMySQL     = "mysql"
	dialectSQLServer = "sqlserver"
	dialectSQLite    = "sqlite"
)

// FieldIDList stores an ordered list of field ids as a JSON array, e.g. [1,2,4]
type FieldIDList []int64

// GormDBDataType implements the GormDBDataTypeInterface to return
// dialect-specific column types for cross-database compatibility
func (FieldIDList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Name() {
	case dialectMySQL:
		return "LONGTEXT"
	case dialectSQLServer:
		return "NVARCHAR(MAX)"
	case dialectPostgres, dialectSQLite:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// Value implements the driver.Valuer interface for database writes
func (l FieldIDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	bytes, err := json.Marshal([]int64(l))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface for database reads
func (l *FieldIDList) Scan(value any) error {
	if value == nil {
		*l = FieldIDList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan type %T into FieldIDList", value)
	}

	if len(bytes) == 0 || string(bytes) == "[]" || string(bytes) == "null" {
		*l = FieldIDList{}
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(bytes, &ids); err != nil {
		return fmt.Errorf("invalid field id list %q: %w", string(bytes), err)
	}
	*l = ids
	return nil
}
