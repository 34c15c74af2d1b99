package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EmailConfig holds SMTP transport settings.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// NotificationConfig holds defaults for the notification jobs.
type NotificationConfig struct {
	DefaultDueSoonDays int
	DigestDefaultTime  string // HH:MM
}

// Config keeps runtime settings for the service.
type Config struct {
	DatabasePath  string
	TelegramToken string
	LogLevel      string
	BaseURL       string
	Email         EmailConfig
	Notifications NotificationConfig
}

// Load reads configuration from the environment, honoring a local .env
// file when present, with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabasePath:  getEnv("DATABASE_PATH", "data/homerhythm.db"),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:5173"),
		Email: EmailConfig{
			Enabled:  os.Getenv("EMAIL_ENABLED") == "true",
			Host:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     getEnv("EMAIL_FROM", os.Getenv("EMAIL_USER")),
			FromName: getEnv("EMAIL_FROM_NAME", "HomeRhythm"),
		},
		Notifications: NotificationConfig{
			DefaultDueSoonDays: getEnvInt("NOTIFICATION_DUE_SOON_DAYS", 3),
			DigestDefaultTime:  getEnv("DIGEST_DEFAULT_TIME", "09:00"),
		},
	}

	if cfg.Email.Enabled && cfg.Email.Username == "" {
		return cfg, fmt.Errorf("EMAIL_USER is required when EMAIL_ENABLED=true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
