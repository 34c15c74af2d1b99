package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homerhythm/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func ptr[T any](v T) *T { return &v }

func TestPreferenceGetOrCreateDefaults(t *testing.T) {
	t.Parallel()

	repo := NewPreferenceRepository(newTestDB(t))
	ctx := context.Background()

	prefs, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, uint(42), prefs.UserID)
	assert.True(t, prefs.NotificationsEnabled)
	assert.Equal(t, 3, prefs.TaskDueSoonDays)
	assert.True(t, prefs.TaskDueSoonEnabled)
	assert.True(t, prefs.TaskOverdueEnabled)
	assert.True(t, prefs.TaskAssignedEnabled)
	assert.False(t, prefs.DigestEnabled)
	assert.Equal(t, model.DigestDaily, prefs.DigestFrequency)
	assert.Equal(t, "09:00", prefs.DigestTime)
	assert.Equal(t, 1, prefs.DigestDayOfWeek)

	// Second read returns the same row, not a new one.
	again, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, prefs.ID, again.ID)
}

func TestPreferenceUpdatePartial(t *testing.T) {
	t.Parallel()

	repo := NewPreferenceRepository(newTestDB(t))
	ctx := context.Background()

	updated, err := repo.Update(ctx, 7, map[string]interface{}{
		"task_due_soon_days": 5,
		"digest_enabled":     true,
		"digest_frequency":   model.DigestWeekly,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.TaskDueSoonDays)
	assert.True(t, updated.DigestEnabled)
	assert.Equal(t, model.DigestWeekly, updated.DigestFrequency)
	// Untouched fields keep their defaults.
	assert.True(t, updated.NotificationsEnabled)
	assert.Equal(t, "09:00", updated.DigestTime)
}

func TestPreferenceUpdateIgnoresProtectedKeys(t *testing.T) {
	t.Parallel()

	repo := NewPreferenceRepository(newTestDB(t))
	ctx := context.Background()

	original, err := repo.GetOrCreate(ctx, 9)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, 9, map[string]interface{}{
		"id":      999,
		"user_id": 999,
	})
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, uint(9), updated.UserID)
}

func TestLedgerHasRecentSend(t *testing.T) {
	t.Parallel()

	repo := NewNotificationLogRepository(newTestDB(t))
	ctx := context.Background()

	taskID := ptr(uint(11))
	require.NoError(t, repo.Record(ctx, 1, taskID, model.NotificationDueSoon, "2024-03-01", model.StatusSent, ""))

	found, err := repo.HasRecentSend(ctx, 1, taskID, model.NotificationDueSoon, "2024-03-01")
	require.NoError(t, err)
	assert.True(t, found)

	// Any change to the tuple misses the ledger row.
	for name, check := range map[string]func() (bool, error){
		"different user": func() (bool, error) {
			return repo.HasRecentSend(ctx, 2, taskID, model.NotificationDueSoon, "2024-03-01")
		},
		"different task": func() (bool, error) {
			return repo.HasRecentSend(ctx, 1, ptr(uint(12)), model.NotificationDueSoon, "2024-03-01")
		},
		"nil task": func() (bool, error) {
			return repo.HasRecentSend(ctx, 1, nil, model.NotificationDueSoon, "2024-03-01")
		},
		"different kind": func() (bool, error) {
			return repo.HasRecentSend(ctx, 1, taskID, model.NotificationOverdue, "2024-03-01")
		},
		"different reference date": func() (bool, error) {
			return repo.HasRecentSend(ctx, 1, taskID, model.NotificationDueSoon, "2024-03-02")
		},
	} {
		found, err := check()
		require.NoError(t, err, name)
		assert.False(t, found, name)
	}
}

func TestLedgerFailedRowNeverBlocks(t *testing.T) {
	t.Parallel()

	repo := NewNotificationLogRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, 1, nil, model.NotificationDigest, "2024-03-01", model.StatusFailed, "smtp timeout"))

	found, err := repo.HasRecentSend(ctx, 1, nil, model.NotificationDigest, "2024-03-01")
	require.NoError(t, err)
	assert.False(t, found, "only sent rows block a retry")
}

func TestLedgerNilTaskTuple(t *testing.T) {
	t.Parallel()

	repo := NewNotificationLogRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, 3, nil, model.NotificationDigest, "2024-03-01", model.StatusSent, ""))

	found, err := repo.HasRecentSend(ctx, 3, nil, model.NotificationDigest, "2024-03-01")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.HasRecentSend(ctx, 3, ptr(uint(1)), model.NotificationDigest, "2024-03-01")
	require.NoError(t, err)
	assert.False(t, found, "task-scoped lookup must not match the digest row")
}

func TestCompletionLatestAndCount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	tasks := NewTaskRepository(db)
	completions := NewCompletionRepository(db)
	ctx := context.Background()

	task := &model.Task{UserID: 5, Title: "Descale kettle", ScheduleType: model.ScheduleRecurring,
		RecurrencePattern: model.PatternMonthly, RecurrenceInterval: 1}
	require.NoError(t, tasks.Create(ctx, task))

	latest, err := completions.Latest(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, latest, "no completions yet")

	now := time.Now()
	require.NoError(t, completions.Create(ctx, &model.Completion{TaskID: task.ID, CompletedAt: now.AddDate(0, 0, -10)}))
	require.NoError(t, completions.Create(ctx, &model.Completion{TaskID: task.ID, CompletedAt: now.AddDate(0, 0, -2)}))

	latest, err = completions.Latest(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.WithinDuration(t, now.AddDate(0, 0, -2), latest.CompletedAt, time.Second)

	count, err := completions.CountForOwnerSince(ctx, 5, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "only the completion within the window counts")

	count, err = completions.CountForOwnerSince(ctx, 6, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "other owners see nothing")
}

func TestTaskListForUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owned := &model.Task{UserID: 1, Title: "Mow lawn", ScheduleType: model.ScheduleOnce}
	assigned := &model.Task{UserID: 2, AssignedTo: ptr(uint(1)), Title: "Clean oven", ScheduleType: model.ScheduleOnce}
	unrelated := &model.Task{UserID: 3, Title: "Water plants", ScheduleType: model.ScheduleOnce}
	for _, task := range []*model.Task{owned, assigned, unrelated} {
		require.NoError(t, tasks.Create(ctx, task))
	}

	got, err := tasks.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	titles := []string{got[0].Title, got[1].Title}
	assert.Contains(t, titles, "Mow lawn")
	assert.Contains(t, titles, "Clean oven")
}
