package model

import "time"

// Completion records one finished occurrence of a task. Only the most
// recent completion matters for due-date math.
type Completion struct {
	ID          uint `gorm:"primaryKey"`
	TaskID      uint `gorm:"index"`
	CompletedAt time.Time
	Notes       string
	CreatedAt   time.Time
}
