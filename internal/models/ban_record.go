package models

import "time"

// Ban is a temporary suspension of a user. A ban whose ExpiresAt is in the
// past counts as no ban.
type Ban struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	ExpiresAt time.Time `gorm:"column:banned_until;index;not null"`
	Reason    string    `gorm:"type:text"`
	AdminID   int64     `gorm:"not null"`
	CreatedAt time.Time
}

func (Ban) TableName() string { return "user_bans" }

// Expired reports whether the ban no longer applies at now.
func (b *Ban) Expired(now time.Time) bool {
	return !b.ExpiresAt.After(now)
}
