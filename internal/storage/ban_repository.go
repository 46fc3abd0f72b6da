package storage

import (
	"context"
	"errors"
	"time"

	"support-relay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BanRepository handles database operations for Ban
type BanRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// MigrateTable ensures the Ban table exists
func (r *BanRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Ban{})
}

// Upsert stores the ban, replacing any earlier ban of the same user.
func (r *BanRepository) Upsert(ctx context.Context, ban *models.Ban) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"banned_until", "reason", "admin_id", "created_at"}),
	}).Create(ban).Error
}

// GetActive returns the ban of a user that is still in force at now. An
// expired row is deleted and reported as no ban. The delete is conditional
// on expiry so a ban imposed concurrently is never removed.
func (r *BanRepository) GetActive(ctx context.Context, userID int64, now time.Time) (*models.Ban, error) {
	var ban models.Ban
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ban).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !ban.Expired(now) {
		return &ban, nil
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND banned_until <= ?", userID, now).
		Delete(&models.Ban{}).Error; err != nil {
		return nil, err
	}
	return nil, nil
}

// Delete removes the ban of a user, if any.
func (r *BanRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Ban{}).Error
}
