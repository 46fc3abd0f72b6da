package models

import "time"

// Session is the active support category of a user. No row means no category.
type Session struct {
	UserID    int64    `gorm:"primaryKey;autoIncrement:false"`
	Category  Category `gorm:"size:32;not null"`
	UpdatedAt time.Time
}

func (Session) TableName() string { return "user_sessions" }
