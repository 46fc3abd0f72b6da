package models

import "time"

// User is an end user (or admin) that has talked to the bot.
type User struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Username  string `gorm:"size:64"`
	FirstName string `gorm:"size:128"`
	LastName  string `gorm:"size:128"`
	CreatedAt time.Time
	LastSeen  time.Time `gorm:"index"`
}

func (User) TableName() string { return "tg_users" }
