package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homerhythm/internal/model"
)

// PreferenceRepository stores per-user notification preferences. Rows
// are created lazily with defaults on first read.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetOrCreate returns the user's preferences, inserting the default row
// if none exists yet.
func (r *PreferenceRepository) GetOrCreate(ctx context.Context, userID uint) (*model.NotificationPreference, error) {
	var prefs model.NotificationPreference
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ?", userID).First(&prefs).Error
	switch {
	case err == nil:
		return &prefs, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		prefs = model.DefaultPreference(userID)
		if err := db.Create(&prefs).Error; err != nil {
			return nil, fmt.Errorf("create preferences: %w", err)
		}
		return &prefs, nil
	default:
		return nil, fmt.Errorf("find preferences: %w", err)
	}
}

// Update applies a partial update and returns the resulting row. The
// row is created with defaults first when missing.
func (r *PreferenceRepository) Update(ctx context.Context, userID uint, changes map[string]interface{}) (*model.NotificationPreference, error) {
	prefs, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	delete(changes, "id")
	delete(changes, "user_id")
	delete(changes, "created_at")

	if len(changes) > 0 {
		if err := r.db.WithContext(ctx).Model(prefs).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update preferences: %w", err)
		}
	}

	return r.GetOrCreate(ctx, userID)
}
