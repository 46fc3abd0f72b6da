package models

import "time"

// PendingActionKind names a multi-step admin operation waiting for input.
type PendingActionKind string

const (
	// ActionBanReason waits for the free-text reason of a ban.
	ActionBanReason PendingActionKind = "ban_reason"
)

// PendingAdminAction is the single in-flight action of an admin.
type PendingAdminAction struct {
	AdminID      int64             `gorm:"primaryKey;autoIncrement:false"`
	Action       PendingActionKind `gorm:"size:32;not null"`
	TargetUserID int64             `gorm:"index;not null"`
	Category     Category          `gorm:"size:32;not null"`
	RefMessageID int
	Token        string `gorm:"size:36;not null"`
	CreatedAt    time.Time
}

func (PendingAdminAction) TableName() string { return "pending_admin_actions" }
