package model

import "time"

// Schedule types.
const (
	ScheduleOnce      = "once"
	ScheduleRecurring = "recurring"
)

// Recurrence patterns for recurring tasks.
const (
	PatternDaily    = "daily"
	PatternWeekly   = "weekly"
	PatternMonthly  = "monthly"
	PatternYearly   = "yearly"
	PatternSeasonal = "seasonal"
)

// Flexibility windows for one-time tasks. Descriptive only; they do not
// change due-date arithmetic.
const (
	FlexExactDate   = "exact_date"
	FlexWithinWeek  = "within_week"
	FlexWithinMonth = "within_month"
	FlexWithinYear  = "within_year"
)

// Task represents a household maintenance item, one-time or recurring.
type Task struct {
	ID                 uint  `gorm:"primaryKey"`
	UserID             uint  `gorm:"index"`
	AssignedTo         *uint `gorm:"index"`
	Title              string
	Description        string
	Category           string
	ScheduleType       string // once or recurring
	DueDate            *time.Time
	FlexibilityWindow  string
	RecurrencePattern  string // daily, weekly, monthly, yearly, seasonal
	RecurrenceInterval int
	RecurrenceConfig   string // JSON overrides, e.g. {"weekdays":[1,3]} or {"day_of_month":15}
	Priority           string
	EstimatedTime      *int // minutes
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Recurring reports whether the task repeats.
func (t *Task) Recurring() bool {
	return t.ScheduleType == ScheduleRecurring
}
