package storage

import (
	"context"

	"support-relay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackedMessageRepository handles database operations for TrackedMessage
type TrackedMessageRepository struct {
	db *gorm.DB
}

// NewTrackedMessageRepository creates a new TrackedMessageRepository
func NewTrackedMessageRepository(db *gorm.DB) *TrackedMessageRepository {
	return &TrackedMessageRepository{db: db}
}

// MigrateTable ensures the TrackedMessage table exists
func (r *TrackedMessageRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.TrackedMessage{})
}

// Add records an outbound message; a message tracked twice is kept once.
func (r *TrackedMessageRepository) Add(ctx context.Context, m *models.TrackedMessage) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *TrackedMessageRepository) ListByUser(ctx context.Context, userID int64) ([]models.TrackedMessage, error) {
	var msgs []models.TrackedMessage
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&msgs)
	return msgs, result.Error
}
