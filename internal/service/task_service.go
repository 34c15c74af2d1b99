package service

import (
	"context"
	"fmt"
	"time"

	"homerhythm/internal/model"
	"homerhythm/internal/repository"
	"homerhythm/internal/schedule"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title              string
	Description        string
	Category           string
	ScheduleType       string
	DueDate            *time.Time
	FlexibilityWindow  string
	RecurrencePattern  string
	RecurrenceInterval int
	RecurrenceConfig   string
	Priority           string
	AssignedTo         *uint
}

// TaskService wraps task workflows: creation, completion and
// assignment. Assignment fires the assigned notification synchronously.
type TaskService struct {
	tasks         *repository.TaskRepository
	completions   *repository.CompletionRepository
	calculator    *schedule.Calculator
	notifications *NotificationService
}

func NewTaskService(tasks *repository.TaskRepository, completions *repository.CompletionRepository, calculator *schedule.Calculator, notifications *NotificationService) *TaskService {
	return &TaskService{
		tasks:         tasks,
		completions:   completions,
		calculator:    calculator,
		notifications: notifications,
	}
}

// CreateTask validates schedule invariants and stores the task:
// recurring tasks always carry a pattern and a positive interval,
// one-time tasks never do.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	switch input.ScheduleType {
	case model.ScheduleOnce:
		if input.RecurrencePattern != "" || input.RecurrenceInterval != 0 {
			return nil, fmt.Errorf("one-time tasks cannot carry a recurrence")
		}
	case model.ScheduleRecurring:
		if input.RecurrencePattern == "" || input.RecurrenceInterval <= 0 {
			return nil, fmt.Errorf("recurring tasks require a pattern and a positive interval")
		}
	default:
		return nil, fmt.Errorf("unknown schedule type %q", input.ScheduleType)
	}

	task := model.Task{
		UserID:             user.ID,
		AssignedTo:         input.AssignedTo,
		Title:              input.Title,
		Description:        input.Description,
		Category:           input.Category,
		ScheduleType:       input.ScheduleType,
		DueDate:            input.DueDate,
		FlexibilityWindow:  input.FlexibilityWindow,
		RecurrencePattern:  input.RecurrencePattern,
		RecurrenceInterval: input.RecurrenceInterval,
		RecurrenceConfig:   input.RecurrenceConfig,
		Priority:           input.Priority,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}

	if task.AssignedTo != nil {
		if err := s.notifications.SendTaskAssignedNotification(ctx, &task); err != nil {
			return nil, err
		}
	}

	return &task, nil
}

// CompleteTask appends a completion record. For recurring tasks this is
// what advances the next due date.
func (s *TaskService) CompleteTask(ctx context.Context, taskID uint, completedAt time.Time, notes string) (*model.Completion, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}

	completion := model.Completion{
		TaskID:      taskID,
		CompletedAt: completedAt,
		Notes:       notes,
	}
	if err := s.completions.Create(ctx, &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

// AssignTask sets the assignee and notifies them.
func (s *TaskService) AssignTask(ctx context.Context, taskID uint, assigneeID *uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}

	if err := s.tasks.UpdateAssignee(ctx, task, assigneeID); err != nil {
		return nil, err
	}

	if err := s.notifications.SendTaskAssignedNotification(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// TaskStatus exposes the derived urgency projection for a task.
func (s *TaskService) TaskStatus(ctx context.Context, taskID uint) (schedule.Status, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return schedule.Status{}, fmt.Errorf("find task: %w", err)
	}
	return s.calculator.TaskStatus(ctx, task, time.Now())
}
