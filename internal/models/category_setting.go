package models

import "time"

// CategorySetting holds process-wide resources of a category.
type CategorySetting struct {
	Category     Category `gorm:"primaryKey;size:32"`
	BannerFileID string   `gorm:"size:255"`
	UpdatedBy    int64
	UpdatedAt    time.Time
}

func (CategorySetting) TableName() string { return "category_settings" }
