// Package schedule computes due dates and urgency for tasks. The date
// math is pure; only status lookups touch completion history.
package schedule

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"homerhythm/internal/model"
	"homerhythm/internal/repository"
)

// Status is the derived urgency projection for a task. It is computed
// fresh on every evaluation and never persisted.
type Status struct {
	NextDueDate     *time.Time
	IsOverdue       bool
	DaysUntilDue    *int
	LastCompletedAt *time.Time
}

// recurrenceConfig carries optional pattern refinements stored as JSON
// on the task.
type recurrenceConfig struct {
	Weekdays   []int `json:"weekdays"` // 0 = Sunday .. 6 = Saturday
	DayOfMonth int   `json:"day_of_month"`
}

// NextDueDate returns when the task is next due. One-time tasks report
// their original due date regardless of completion history. Recurring
// tasks advance from the last completion (or the due date, or creation
// time) by their pattern and interval. Returns nil for a recurring task
// with a missing pattern or interval.
func NextDueDate(task *model.Task, lastCompletedAt *time.Time) *time.Time {
	if task.ScheduleType == model.ScheduleOnce {
		if task.DueDate == nil {
			return nil
		}
		due := *task.DueDate
		return &due
	}

	if task.RecurrencePattern == "" || task.RecurrenceInterval <= 0 {
		return nil
	}

	base := task.CreatedAt
	switch {
	case lastCompletedAt != nil:
		base = *lastCompletedAt
	case task.DueDate != nil:
		base = *task.DueDate
	}

	interval := task.RecurrenceInterval
	var next time.Time
	switch task.RecurrencePattern {
	case model.PatternDaily:
		next = base.AddDate(0, 0, interval)
	case model.PatternWeekly:
		next = base.AddDate(0, 0, interval*7)
	case model.PatternMonthly:
		next = base.AddDate(0, interval, 0)
	case model.PatternYearly:
		next = base.AddDate(interval, 0, 0)
	case model.PatternSeasonal:
		// A season is a fixed three calendar months.
		next = base.AddDate(0, interval*3, 0)
	default:
		return nil
	}

	next = applyConfig(task, next)
	return &next
}

// applyConfig refines the computed date with weekday or day-of-month
// overrides. Malformed config JSON is ignored.
func applyConfig(task *model.Task, next time.Time) time.Time {
	if task.RecurrenceConfig == "" {
		return next
	}

	var cfg recurrenceConfig
	if err := json.Unmarshal([]byte(task.RecurrenceConfig), &cfg); err != nil {
		return next
	}

	if task.RecurrencePattern == model.PatternWeekly && len(cfg.Weekdays) > 0 {
		next = next.AddDate(0, 0, daysToNextWeekday(next.Weekday(), cfg.Weekdays))
	}

	if task.RecurrencePattern == model.PatternMonthly && cfg.DayOfMonth > 0 {
		next = time.Date(next.Year(), next.Month(), cfg.DayOfMonth,
			next.Hour(), next.Minute(), next.Second(), next.Nanosecond(), next.Location())
	}

	return next
}

// daysToNextWeekday scans 1..7 days ahead for the first weekday in the
// target set, always moving forward off the current day.
func daysToNextWeekday(current time.Weekday, targets []int) int {
	for i := 1; i <= 7; i++ {
		check := (int(current) + i) % 7
		for _, target := range targets {
			if check == target {
				return i
			}
		}
	}
	return 0
}

// DaysUntil returns the calendar-day distance from now to the due date,
// with both stripped to midnight before subtracting. Negative means the
// date has passed.
func DaysUntil(now, due time.Time) int {
	from := startOfDay(now)
	to := startOfDay(due.In(now.Location()))
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Calculator derives task status from schedule rules and completion
// history.
type Calculator struct {
	completions *repository.CompletionRepository
}

func NewCalculator(completions *repository.CompletionRepository) *Calculator {
	return &Calculator{completions: completions}
}

// TaskStatus computes the task's next due date and urgency relative to
// now.
func (c *Calculator) TaskStatus(ctx context.Context, task *model.Task, now time.Time) (Status, error) {
	var lastCompletedAt *time.Time
	latest, err := c.completions.Latest(ctx, task.ID)
	if err != nil {
		return Status{}, err
	}
	if latest != nil {
		lastCompletedAt = &latest.CompletedAt
	}

	nextDue := NextDueDate(task, lastCompletedAt)
	if nextDue == nil {
		return Status{LastCompletedAt: lastCompletedAt}, nil
	}

	days := DaysUntil(now, *nextDue)
	return Status{
		NextDueDate:     nextDue,
		IsOverdue:       days < 0,
		DaysUntilDue:    &days,
		LastCompletedAt: lastCompletedAt,
	}, nil
}

// IsDueSoon reports whether the task is due within thresholdDays,
// strictly in the future. A task due today is neither due soon nor
// overdue.
func (c *Calculator) IsDueSoon(ctx context.Context, task *model.Task, thresholdDays int, now time.Time) (bool, error) {
	status, err := c.TaskStatus(ctx, task, now)
	if err != nil {
		return false, err
	}
	return DueSoon(status, thresholdDays), nil
}

// DueSoon classifies an already-computed status.
func DueSoon(status Status, thresholdDays int) bool {
	if status.IsOverdue || status.DaysUntilDue == nil {
		return false
	}
	days := *status.DaysUntilDue
	return days > 0 && days <= thresholdDays
}
