package storage

import (
	"context"
	"errors"

	"support-relay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InboxRepository handles database operations for InboxMapping
type InboxRepository struct {
	db *gorm.DB
}

// NewInboxRepository creates a new InboxRepository
func NewInboxRepository(db *gorm.DB) *InboxRepository {
	return &InboxRepository{db: db}
}

// MigrateTable ensures the InboxMapping table exists
func (r *InboxRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.InboxMapping{})
}

// Insert adds the mapping; an existing (admin, message) pair is left untouched.
func (r *InboxRepository) Insert(ctx context.Context, m *models.InboxMapping) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

// Find returns the mapping of an admin-facing message or nil.
func (r *InboxRepository) Find(ctx context.Context, adminID int64, adminMessageID int) (*models.InboxMapping, error) {
	var m models.InboxMapping
	err := r.db.WithContext(ctx).
		Where("admin_id = ? AND admin_message_id = ?", adminID, adminMessageID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
