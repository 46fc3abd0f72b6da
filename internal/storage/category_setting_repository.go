package storage

import (
	"context"
	"errors"

	"support-relay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategorySettingRepository handles database operations for CategorySetting
type CategorySettingRepository struct {
	db *gorm.DB
}

// NewCategorySettingRepository creates a new CategorySettingRepository
func NewCategorySettingRepository(db *gorm.DB) *CategorySettingRepository {
	return &CategorySettingRepository{db: db}
}

// MigrateTable ensures the CategorySetting table exists
func (r *CategorySettingRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.CategorySetting{})
}

func (r *CategorySettingRepository) Upsert(ctx context.Context, setting *models.CategorySetting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"banner_file_id", "updated_by", "updated_at"}),
	}).Create(setting).Error
}

// Get returns the setting of a category or nil.
func (r *CategorySettingRepository) Get(ctx context.Context, category models.Category) (*models.CategorySetting, error) {
	var setting models.CategorySetting
	err := r.db.WithContext(ctx).Where("category = ?", category).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
