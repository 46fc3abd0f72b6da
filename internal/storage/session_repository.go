package storage

import (
	"context"
	"errors"
	"time"

	"support-relay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository handles database operations for Session
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// MigrateTable ensures the Session table exists
func (r *SessionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Session{})
}

// Upsert sets the category of a user, overwriting the current one.
func (r *SessionRepository) Upsert(ctx context.Context, userID int64, category models.Category, at time.Time) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "updated_at"}),
	}).Create(&models.Session{UserID: userID, Category: category, UpdatedAt: at}).Error
}

// InsertIfAbsent creates the session only when the user has none. It reports
// whether a row was created.
func (r *SessionRepository) InsertIfAbsent(ctx context.Context, userID int64, category models.Category, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Session{UserID: userID, Category: category, UpdatedAt: at})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Get returns the session of a user or nil.
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
