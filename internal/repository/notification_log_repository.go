package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homerhythm/internal/model"
)

// NotificationLogRepository is the append-only idempotency ledger for
// notification sends. Rows are never updated or deleted.
type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// HasRecentSend reports whether a sent row exists for the exact
// (user, task, kind, reference date) tuple within the trailing 24 hours.
// Failed rows never block a retry.
func (r *NotificationLogRepository) HasRecentSend(ctx context.Context, userID uint, taskID *uint, kind, referenceDate string) (bool, error) {
	cutoff := time.Now().Add(-24 * time.Hour)

	query := r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("user_id = ? AND notification_type = ? AND reference_date = ?", userID, kind, referenceDate).
		Where("status = ? AND sent_at > ?", model.StatusSent, cutoff)
	if taskID != nil {
		query = query.Where("task_id = ?", *taskID)
	} else {
		query = query.Where("task_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check notification log: %w", err)
	}
	return count > 0, nil
}

// Record appends a ledger row for a send attempt.
func (r *NotificationLogRepository) Record(ctx context.Context, userID uint, taskID *uint, kind, referenceDate, status, errorMessage string) error {
	entry := model.NotificationLog{
		UserID:           userID,
		TaskID:           taskID,
		NotificationType: kind,
		ReferenceDate:    referenceDate,
		SentAt:           time.Now(),
		Status:           status,
		ErrorMessage:     errorMessage,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// ListForUser returns the most recent log rows for a user, newest first.
func (r *NotificationLogRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]model.NotificationLog, error) {
	var entries []model.NotificationLog
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
