package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"homerhythm/internal/model"
)

// CompletionRepository stores task completion history.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (r *CompletionRepository) Create(ctx context.Context, completion *model.Completion) error {
	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

// Latest returns the most recent completion for a task, or nil when the
// task has never been completed.
func (r *CompletionRepository) Latest(ctx context.Context, taskID uint) (*model.Completion, error) {
	var completion model.Completion
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("completed_at DESC").
		First(&completion).Error
	switch {
	case err == nil:
		return &completion, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("latest completion: %w", err)
	}
}

// CountForOwnerSince counts completions of the user's own tasks with
// completed_at on or after the given time.
func (r *CompletionRepository) CountForOwnerSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Completion{}).
		Joins("JOIN tasks ON tasks.id = completions.task_id").
		Where("tasks.user_id = ? AND completions.completed_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return count, nil
}
