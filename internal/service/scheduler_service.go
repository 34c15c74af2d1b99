package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"homerhythm/internal/notify"
)

// SchedulerService owns named cron jobs. Registering a name twice stops
// the prior job first, so re-initialization is idempotent, and every
// handler is isolated so one failing job cannot stall the others.
type SchedulerService struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	logger  *slog.Logger
}

func NewSchedulerService(loc *time.Location, logger *slog.Logger) *SchedulerService {
	return &SchedulerService{
		cron:    cron.New(cron.WithLocation(loc)),
		entries: make(map[string]cron.EntryID),
		logger:  logger,
	}
}

// ScheduleJob registers a named job with a standard 5-field cron spec,
// replacing any previously registered job of the same name.
func (s *SchedulerService) ScheduleJob(name, spec string, job func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[name]; ok {
		s.logger.Info("job already registered, replacing", "job", name)
		s.cron.Remove(id)
		delete(s.entries, name)
	}

	id, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	s.entries[name] = id
	s.logger.Info("scheduled job", "job", name, "spec", spec)
	return nil
}

// wrap isolates a job invocation: panics and errors are logged and
// swallowed so the job keeps its schedule and siblings keep running.
func (s *SchedulerService) wrap(name string, job func(ctx context.Context) error) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("job panicked", "job", name, "panic", r)
			}
		}()

		s.logger.Info("running job", "job", name)
		if err := job(context.Background()); err != nil {
			s.logger.Error("job failed", "job", name, "error", err)
		}
	}
}

// StopJob removes a named job from the schedule.
func (s *SchedulerService) StopJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
		s.logger.Info("stopped job", "job", name)
	}
}

// StopAll removes every job and waits for the running invocation, if
// any, to finish.
func (s *SchedulerService) StopAll() {
	s.mu.Lock()
	for name, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, name)
		s.logger.Info("stopped job", "job", name)
	}
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// JobNames lists currently registered jobs.
func (s *SchedulerService) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// EntryCount reports how many cron entries are live.
func (s *SchedulerService) EntryCount() int {
	return len(s.cron.Entries())
}

// RegisterNotificationJobs installs the default job set: hourly
// due-soon checks, overdue checks every 6 hours, daily and weekly
// digests at the configured time, and a daily transport health check.
func RegisterNotificationJobs(sched *SchedulerService, notifications *NotificationService, dispatcher notify.Dispatcher, digestTime string) error {
	minute, hour, err := parseClock(digestTime)
	if err != nil {
		return err
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"due-soon-check", "0 * * * *", notifications.SendDueSoonNotifications},
		{"overdue-check", "0 */6 * * *", notifications.SendOverdueNotifications},
		{"daily-digest", fmt.Sprintf("%d %d * * *", minute, hour), func(ctx context.Context) error {
			return notifications.SendDigestNotifications(ctx, "daily")
		}},
		{"weekly-digest", fmt.Sprintf("%d %d * * 1", minute, hour), func(ctx context.Context) error {
			return notifications.SendDigestNotifications(ctx, "weekly")
		}},
		{"email-health-check", "0 0 * * *", dispatcher.Verify},
	}

	for _, job := range jobs {
		if err := sched.ScheduleJob(job.name, job.spec, job.run); err != nil {
			return err
		}
	}
	return nil
}

// parseClock splits an HH:MM string.
func parseClock(timeStr string) (minute, hour int, err error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", timeStr)
	}
	return minute, hour, nil
}
