package models

import "time"

// Direction of a logged message.
type Direction string

const (
	DirectionUserToAdmin Direction = "user_to_admin"
	DirectionAdminToUser Direction = "admin_to_user"
	DirectionSystem      Direction = "system"
)

// NonTextPlaceholder is logged for messages without text or caption.
const NonTextPlaceholder = "[non-text message]"

// MessageLogEntry is an append-only record of a relayed message.
type MessageLogEntry struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Direction   Direction `gorm:"size:16;not null"`
	Category    Category  `gorm:"size:32;not null"`
	UserID      int64     `gorm:"index;not null"`
	AdminID     int64     `gorm:"index;not null"`
	TgMessageID int
	TgReplyToID *int
	Text        string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`
}

func (MessageLogEntry) TableName() string { return "chat_messages" }
