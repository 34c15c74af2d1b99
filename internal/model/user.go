package model

import "time"

// User is a household member who owns tasks and receives notifications.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex"`
	Name           string
	PasswordHash   string
	TelegramChatID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
