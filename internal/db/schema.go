package db

import (
	"fmt"

	"gorm.io/gorm"
)

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// Migrate auto-migrates the given models and then runs any extra DDL
// statements (indexes gorm tags cannot express).
func Migrate(d *gorm.DB, models []interface{}, ddl ...string) error {
	if err := d.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range ddl {
		if err := d.Exec(stmt).Error; err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}
