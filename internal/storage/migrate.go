package storage

import (
	"fmt"

	"support-relay/internal/models"

	"gorm.io/gorm"
)

// AllModels lists every table owned by the relay, in creation order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Session{},
		&models.Ban{},
		&models.InboxMapping{},
		&models.PendingAdminAction{},
		&models.MessageLogEntry{},
		&models.TrackedMessage{},
		&models.CategorySetting{},
	}
}

// Migrate creates or updates every relay table.
func Migrate(db *gorm.DB) error {
	for _, m := range AllModels() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	return nil
}
