package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"homerhythm/internal/config"
	"homerhythm/internal/notify"
	"homerhythm/internal/repository"
	"homerhythm/internal/schedule"
	"homerhythm/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	ledgerRepo := repository.NewNotificationLogRepository(db)

	calculator := schedule.NewCalculator(completionRepo)

	email := notify.NewEmail(cfg.Email, logger)
	var dispatcher notify.Dispatcher = email
	if cfg.TelegramToken != "" {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, logger)
		if err != nil {
			logger.Warn("telegram channel unavailable", "error", err)
		} else {
			dispatcher = notify.NewFanout(email, telegram, logger)
		}
	}

	notifications := service.NewNotificationService(
		userRepo, taskRepo, completionRepo, prefRepo, ledgerRepo,
		calculator, dispatcher, logger)

	scheduler := service.NewSchedulerService(time.Local, logger)
	if err := service.RegisterNotificationJobs(scheduler, notifications, dispatcher, cfg.Notifications.DigestDefaultTime); err != nil {
		logger.Error("schedule jobs", "error", err)
		os.Exit(1)
	}

	// Transport connectivity is checked on startup and then daily by
	// the email-health-check job.
	if err := dispatcher.Verify(ctx); err != nil {
		logger.Warn("transport check failed", "error", err)
	}

	scheduler.Start()
	logger.Info("homerhythm notification service started")

	<-ctx.Done()
	scheduler.StopAll()
	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}
