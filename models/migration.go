package models

import (
	"github.com/mmdatafocus/drcm_backend/config"
)

// MigrateTable creates the audit mirror table. It is a no-op without a database.
func MigrateTable() error {
	db := config.GetDB()
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&AuditLogEntry{})
}
