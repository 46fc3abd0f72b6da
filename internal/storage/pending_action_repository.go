package storage

import (
	"context"
	"errors"

	"support-relay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingActionRepository handles database operations for PendingAdminAction
type PendingActionRepository struct {
	db *gorm.DB
}

// NewPendingActionRepository creates a new PendingActionRepository
func NewPendingActionRepository(db *gorm.DB) *PendingActionRepository {
	return &PendingActionRepository{db: db}
}

// MigrateTable ensures the PendingAdminAction table exists
func (r *PendingActionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.PendingAdminAction{})
}

// Upsert replaces the pending action of the admin.
func (r *PendingActionRepository) Upsert(ctx context.Context, action *models.PendingAdminAction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"action", "target_user_id", "category", "ref_message_id", "token", "created_at"}),
	}).Create(action).Error
}

// Take reads the pending action of the admin and deletes it. The delete only
// matches the token that was read, so of two concurrent takers exactly one
// receives the row and the other gets nil.
func (r *PendingActionRepository) Take(ctx context.Context, adminID int64) (*models.PendingAdminAction, error) {
	action, err := r.Get(ctx, adminID)
	if err != nil || action == nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Where("admin_id = ? AND token = ?", adminID, action.Token).
		Delete(&models.PendingAdminAction{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return action, nil
}

// Get returns the pending action without consuming it.
func (r *PendingActionRepository) Get(ctx context.Context, adminID int64) (*models.PendingAdminAction, error) {
	var action models.PendingAdminAction
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}
