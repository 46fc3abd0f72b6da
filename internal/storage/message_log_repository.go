package storage

import (
	"context"

	"support-relay/internal/models"

	"gorm.io/gorm"
)

// MessageLogRepository handles database operations for MessageLogEntry
type MessageLogRepository struct {
	db *gorm.DB
}

// NewMessageLogRepository creates a new MessageLogRepository
func NewMessageLogRepository(db *gorm.DB) *MessageLogRepository {
	return &MessageLogRepository{db: db}
}

// MigrateTable ensures the MessageLogEntry table exists
func (r *MessageLogRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.MessageLogEntry{})
}

func (r *MessageLogRepository) Append(ctx context.Context, entry *models.MessageLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser returns the log of a user in creation order.
func (r *MessageLogRepository) ListByUser(ctx context.Context, userID int64) ([]models.MessageLogEntry, error) {
	var entries []models.MessageLogEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&entries).Error
	return entries, err
}
