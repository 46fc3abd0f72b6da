package models

import "time"

// TrackedRole tells which side of the conversation a tracked message lives on.
type TrackedRole string

const (
	RoleToAdmin       TrackedRole = "to_admin"
	RoleToUser        TrackedRole = "to_user"
	RoleAdminAuthored TrackedRole = "admin_authored"
)

// TrackedMessage is an outbound message deleted on a best-effort basis when
// the conversation ends.
type TrackedMessage struct {
	ID        uint        `gorm:"primarykey"`
	UserID    int64       `gorm:"index;not null"`
	Category  Category    `gorm:"size:32;not null"`
	ChatID    int64       `gorm:"uniqueIndex:idx_chat_message;not null"`
	MessageID int         `gorm:"uniqueIndex:idx_chat_message;not null"`
	Role      TrackedRole `gorm:"size:16;not null"`
	CreatedAt time.Time
}

func (TrackedMessage) TableName() string { return "tracked_messages" }
