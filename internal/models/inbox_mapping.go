package models

import "time"

// InboxMapping links a message the bot placed in an admin chat to the user
// it represents.
type InboxMapping struct {
	ID             uint     `gorm:"primaryKey;autoIncrement"`
	AdminID        int64    `gorm:"uniqueIndex:idx_admin_message;not null"`
	AdminMessageID int      `gorm:"uniqueIndex:idx_admin_message;not null"`
	UserID         int64    `gorm:"index;not null"`
	Category       Category `gorm:"size:32;not null"`
	CreatedAt      time.Time
}

func (InboxMapping) TableName() string { return "admin_inbox_map" }
