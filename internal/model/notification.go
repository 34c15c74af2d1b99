package model

import "time"

// Notification kinds written to the log.
const (
	NotificationDueSoon  = "due_soon"
	NotificationOverdue  = "overdue"
	NotificationAssigned = "assigned"
	NotificationDigest   = "digest"
	NotificationTest     = "test"
)

// Digest frequencies.
const (
	DigestDaily  = "daily"
	DigestWeekly = "weekly"
)

// Send outcomes recorded in the log.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// NotificationPreference holds a user's notification settings. A row is
// created lazily with defaults the first time it is read.
type NotificationPreference struct {
	ID                   uint `gorm:"primaryKey"`
	UserID               uint `gorm:"uniqueIndex"`
	NotificationsEnabled bool
	TaskDueSoonDays      int
	TaskDueSoonEnabled   bool
	TaskOverdueEnabled   bool
	TaskAssignedEnabled  bool
	DigestEnabled        bool
	DigestFrequency      string
	DigestTime           string // HH:MM
	DigestDayOfWeek      int    // 1 = Monday
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DefaultPreference returns the preference row created on first read.
func DefaultPreference(userID uint) NotificationPreference {
	return NotificationPreference{
		UserID:               userID,
		NotificationsEnabled: true,
		TaskDueSoonDays:      3,
		TaskDueSoonEnabled:   true,
		TaskOverdueEnabled:   true,
		TaskAssignedEnabled:  true,
		DigestEnabled:        false,
		DigestFrequency:      DigestDaily,
		DigestTime:           "09:00",
		DigestDayOfWeek:      1,
	}
}

// NotificationLog is an append-only record of every send attempt. A sent
// row within the last 24 hours blocks further attempts for the same
// (user, task, type, reference date) tuple.
type NotificationLog struct {
	ID               uint  `gorm:"primaryKey"`
	UserID           uint  `gorm:"index:idx_notification_dedup"`
	TaskID           *uint `gorm:"index:idx_notification_dedup"`
	NotificationType string `gorm:"index:idx_notification_dedup"`
	ReferenceDate    string `gorm:"index:idx_notification_dedup"` // YYYY-MM-DD
	SentAt           time.Time
	Status           string // sent or failed
	ErrorMessage     string
}
