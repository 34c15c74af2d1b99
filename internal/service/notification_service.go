package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"homerhythm/internal/model"
	"homerhythm/internal/notify"
	"homerhythm/internal/repository"
	"homerhythm/internal/schedule"
)

const refDateLayout = "2006-01-02"

// NotificationService selects eligible tasks per user, renders messages
// and drives ledger-gated sends. A failure for one user never aborts
// the rest of the batch.
type NotificationService struct {
	users       *repository.UserRepository
	tasks       *repository.TaskRepository
	completions *repository.CompletionRepository
	prefs       *repository.PreferenceRepository
	ledger      *repository.NotificationLogRepository
	calculator  *schedule.Calculator
	dispatcher  notify.Dispatcher
	logger      *slog.Logger
}

func NewNotificationService(
	users *repository.UserRepository,
	tasks *repository.TaskRepository,
	completions *repository.CompletionRepository,
	prefs *repository.PreferenceRepository,
	ledger *repository.NotificationLogRepository,
	calculator *schedule.Calculator,
	dispatcher notify.Dispatcher,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		users:       users,
		tasks:       tasks,
		completions: completions,
		prefs:       prefs,
		ledger:      ledger,
		calculator:  calculator,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

type taskWithStatus struct {
	task   model.Task
	status schedule.Status
}

// SendDueSoonNotifications notifies every opted-in user about tasks due
// within their configured lookahead window.
func (s *NotificationService) SendDueSoonNotifications(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	s.logger.Info("checking due soon tasks", "users", len(users))
	now := time.Now()

	for _, user := range users {
		if err := s.dueSoonForUser(ctx, user, now); err != nil {
			s.logger.Error("due soon processing failed", "user_id", user.ID, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) dueSoonForUser(ctx context.Context, user model.User, now time.Time) error {
	prefs, err := s.prefs.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	if !prefs.NotificationsEnabled || !prefs.TaskDueSoonEnabled {
		return nil
	}

	items, err := s.tasksDueSoon(ctx, user.ID, prefs.TaskDueSoonDays, now)
	if err != nil {
		return err
	}

	for _, item := range items {
		days := *item.status.DaysUntilDue
		html, err := notify.RenderDueSoon(&item.task, days)
		if err != nil {
			return err
		}
		subject := fmt.Sprintf("Task due in %d day%s: %s", days, pluralSuffix(days), item.task.Title)
		taskID := item.task.ID
		s.deliver(ctx, &user, &taskID, model.NotificationDueSoon,
			item.status.NextDueDate.Format(refDateLayout),
			subject, html, notify.DueSoonText(&item.task, days))
	}
	return nil
}

// SendOverdueNotifications notifies every opted-in user about tasks
// whose due date has passed.
func (s *NotificationService) SendOverdueNotifications(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	s.logger.Info("checking overdue tasks", "users", len(users))
	now := time.Now()

	for _, user := range users {
		if err := s.overdueForUser(ctx, user, now); err != nil {
			s.logger.Error("overdue processing failed", "user_id", user.ID, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) overdueForUser(ctx context.Context, user model.User, now time.Time) error {
	prefs, err := s.prefs.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	if !prefs.NotificationsEnabled || !prefs.TaskOverdueEnabled {
		return nil
	}

	items, err := s.tasksOverdue(ctx, user.ID, now)
	if err != nil {
		return err
	}

	for _, item := range items {
		daysOverdue := -*item.status.DaysUntilDue
		html, err := notify.RenderOverdue(&item.task, daysOverdue)
		if err != nil {
			return err
		}
		subject := fmt.Sprintf("Task overdue: %s", item.task.Title)
		taskID := item.task.ID
		s.deliver(ctx, &user, &taskID, model.NotificationOverdue,
			item.status.NextDueDate.Format(refDateLayout),
			subject, html, notify.OverdueText(&item.task, daysOverdue))
	}
	return nil
}

// SendTaskAssignedNotification is fired synchronously by the assignment
// workflow. No-op when the task is unassigned or self-assigned.
func (s *NotificationService) SendTaskAssignedNotification(ctx context.Context, task *model.Task) error {
	if task.AssignedTo == nil || *task.AssignedTo == task.UserID {
		return nil
	}

	assignee, err := s.users.FindByID(ctx, *task.AssignedTo)
	if err != nil {
		return fmt.Errorf("find assignee: %w", err)
	}

	prefs, err := s.prefs.GetOrCreate(ctx, assignee.ID)
	if err != nil {
		return err
	}
	if !prefs.NotificationsEnabled || !prefs.TaskAssignedEnabled {
		return nil
	}

	assignerName := "A household member"
	if assigner, err := s.users.FindByID(ctx, task.UserID); err == nil {
		assignerName = displayName(assigner)
	}

	html, err := notify.RenderAssigned(task, assignerName, displayName(assignee))
	if err != nil {
		return err
	}

	taskID := task.ID
	s.deliver(ctx, assignee, &taskID, model.NotificationAssigned,
		time.Now().Format(refDateLayout),
		fmt.Sprintf("New task assigned: %s", task.Title),
		html, notify.AssignedText(task, assignerName))
	return nil
}

// SendDigestNotifications sends one aggregate message per opted-in user
// on the given frequency.
func (s *NotificationService) SendDigestNotifications(ctx context.Context, frequency string) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	s.logger.Info("sending digests", "frequency", frequency, "users", len(users))
	now := time.Now()

	for _, user := range users {
		if err := s.digestForUser(ctx, user, frequency, now); err != nil {
			s.logger.Error("digest failed", "user_id", user.ID, "frequency", frequency, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) digestForUser(ctx context.Context, user model.User, frequency string, now time.Time) error {
	prefs, err := s.prefs.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	if !prefs.NotificationsEnabled || !prefs.DigestEnabled || prefs.DigestFrequency != frequency {
		return nil
	}

	dueSoonItems, err := s.tasksDueSoon(ctx, user.ID, prefs.TaskDueSoonDays, now)
	if err != nil {
		return err
	}
	overdueItems, err := s.tasksOverdue(ctx, user.ID, now)
	if err != nil {
		return err
	}

	dueSoon := digestTasks(dueSoonItems)
	overdue := digestTasks(overdueItems)

	weekly := frequency == model.DigestWeekly
	var completedCount int64
	if weekly {
		completedCount, err = s.completions.CountForOwnerSince(ctx, user.ID, now.AddDate(0, 0, -7))
		if err != nil {
			return err
		}
	}

	html, err := notify.RenderDigest(dueSoon, overdue, weekly, completedCount)
	if err != nil {
		return err
	}

	subject := "Your Daily Task Digest"
	if weekly {
		subject = "Your Weekly Task Summary"
	}

	s.deliver(ctx, &user, nil, model.NotificationDigest,
		now.Format(refDateLayout), subject, html,
		notify.DigestText(dueSoon, overdue, weekly, completedCount))
	return nil
}

// SendTestNotification sends a test message to one user, bypassing
// nothing: it runs through the same ledger gate as every other kind.
func (s *NotificationService) SendTestNotification(ctx context.Context, userID uint) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	html, err := notify.RenderTest()
	if err != nil {
		return err
	}

	return s.deliver(ctx, user, nil, model.NotificationTest,
		time.Now().Format(refDateLayout),
		"Test Email from HomeRhythm", html,
		"✅ HomeRhythm test notification. Your setup works.")
}

// deliver is the single gate every send funnels through: skip when a
// sent row already exists for the tuple, otherwise attempt the send and
// append the outcome to the ledger. Returns the transport error, if
// any; a failed row never blocks the next attempt.
func (s *NotificationService) deliver(ctx context.Context, user *model.User, taskID *uint, kind, referenceDate, subject, htmlBody, textBody string) error {
	sentRecently, err := s.ledger.HasRecentSend(ctx, user.ID, taskID, kind, referenceDate)
	if err != nil {
		s.logger.Error("ledger check failed", "user_id", user.ID, "kind", kind, "error", err)
		return err
	}
	if sentRecently {
		s.logger.Debug("duplicate notification prevented",
			"user_id", user.ID, "kind", kind, "reference_date", referenceDate)
		return nil
	}

	sendErr := s.dispatcher.Send(ctx, notify.Message{
		To:       user.Email,
		ChatID:   user.TelegramChatID,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})

	status := model.StatusSent
	errorMessage := ""
	if sendErr != nil {
		status = model.StatusFailed
		errorMessage = sendErr.Error()
		s.logger.Error("notification send failed",
			"user_id", user.ID, "kind", kind, "error", sendErr)
	}

	if err := s.ledger.Record(ctx, user.ID, taskID, kind, referenceDate, status, errorMessage); err != nil {
		s.logger.Error("ledger record failed", "user_id", user.ID, "kind", kind, "error", err)
	}
	return sendErr
}

func (s *NotificationService) tasksDueSoon(ctx context.Context, userID uint, thresholdDays int, now time.Time) ([]taskWithStatus, error) {
	tasks, err := s.tasks.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var items []taskWithStatus
	for _, task := range tasks {
		status, err := s.calculator.TaskStatus(ctx, &task, now)
		if err != nil {
			return nil, err
		}
		if schedule.DueSoon(status, thresholdDays) {
			items = append(items, taskWithStatus{task: task, status: status})
		}
	}
	return items, nil
}

func (s *NotificationService) tasksOverdue(ctx context.Context, userID uint, now time.Time) ([]taskWithStatus, error) {
	tasks, err := s.tasks.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var items []taskWithStatus
	for _, task := range tasks {
		status, err := s.calculator.TaskStatus(ctx, &task, now)
		if err != nil {
			return nil, err
		}
		if status.IsOverdue && status.NextDueDate != nil {
			items = append(items, taskWithStatus{task: task, status: status})
		}
	}
	return items, nil
}

func digestTasks(items []taskWithStatus) []notify.DigestTask {
	result := make([]notify.DigestTask, 0, len(items))
	for _, item := range items {
		result = append(result, notify.DigestTask{
			Title:    item.task.Title,
			Category: item.task.Category,
			Days:     *item.status.DaysUntilDue,
		})
	}
	return result
}

func displayName(user *model.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
