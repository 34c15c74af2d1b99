package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homerhythm/internal/model"
	"homerhythm/internal/schedule"
)

func newTaskService(t *testing.T) (*TaskService, *fixture) {
	t.Helper()
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.completions, schedule.NewCalculator(f.completions), f.svc)
	return svc, f
}

func TestCreateTaskValidatesScheduleInvariant(t *testing.T) {
	t.Parallel()

	svc, f := newTaskService(t)
	ctx := context.Background()
	user := f.addUser(t, "maker@example.com")

	_, err := svc.CreateTask(ctx, user, TaskInput{
		Title:             "Bad once",
		ScheduleType:      model.ScheduleOnce,
		RecurrencePattern: model.PatternDaily,
	})
	assert.Error(t, err, "one-time tasks never carry a recurrence")

	_, err = svc.CreateTask(ctx, user, TaskInput{
		Title:        "Bad recurring",
		ScheduleType: model.ScheduleRecurring,
	})
	assert.Error(t, err, "recurring tasks always carry a pattern and interval")

	_, err = svc.CreateTask(ctx, user, TaskInput{Title: "No type", ScheduleType: "sometimes"})
	assert.Error(t, err)

	_, err = svc.CreateTask(ctx, user, TaskInput{ScheduleType: model.ScheduleOnce})
	assert.Error(t, err, "title required")

	task, err := svc.CreateTask(ctx, user, TaskInput{
		Title:              "Good recurring",
		ScheduleType:       model.ScheduleRecurring,
		RecurrencePattern:  model.PatternWeekly,
		RecurrenceInterval: 2,
	})
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
}

func TestCompleteTaskAdvancesNextDue(t *testing.T) {
	t.Parallel()

	svc, f := newTaskService(t)
	ctx := context.Background()
	user := f.addUser(t, "done@example.com")

	task, err := svc.CreateTask(ctx, user, TaskInput{
		Title:              "Water plants",
		ScheduleType:       model.ScheduleRecurring,
		RecurrencePattern:  model.PatternDaily,
		RecurrenceInterval: 3,
	})
	require.NoError(t, err)

	completedAt := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	completion, err := svc.CompleteTask(ctx, task.ID, completedAt, "used the new hose")
	require.NoError(t, err)
	assert.Equal(t, task.ID, completion.TaskID)

	status, err := svc.TaskStatus(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, status.NextDueDate)
	assert.True(t, status.NextDueDate.Equal(completedAt.AddDate(0, 0, 3)),
		"next due is exactly last completion plus the interval, got %s", status.NextDueDate)
}

func TestAssignTaskNotifiesAssignee(t *testing.T) {
	t.Parallel()

	svc, f := newTaskService(t)
	ctx := context.Background()

	owner := f.addUser(t, "head@example.com")
	helper := f.addUser(t, "hands@example.com")

	task, err := svc.CreateTask(ctx, owner, TaskInput{
		Title:        "Defrost freezer",
		ScheduleType: model.ScheduleOnce,
	})
	require.NoError(t, err)

	_, err = svc.AssignTask(ctx, task.ID, &helper.ID)
	require.NoError(t, err)

	sent := f.dispatcher.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "hands@example.com", sent[0].To)
}

func TestCreateAssignedTaskNotifiesImmediately(t *testing.T) {
	t.Parallel()

	svc, f := newTaskService(t)
	ctx := context.Background()

	owner := f.addUser(t, "planner@example.com")
	helper := f.addUser(t, "doer@example.com")

	_, err := svc.CreateTask(ctx, owner, TaskInput{
		Title:        "Sweep porch",
		ScheduleType: model.ScheduleOnce,
		AssignedTo:   &helper.ID,
	})
	require.NoError(t, err)

	sent := f.dispatcher.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "doer@example.com", sent[0].To)
}
