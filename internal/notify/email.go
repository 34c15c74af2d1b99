package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"homerhythm/internal/config"
)

// Email sends notifications over SMTP. When the transport is disabled
// in configuration, sends are logged and reported as successful so the
// rest of the pipeline behaves identically.
type Email struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
	logger *slog.Logger
}

func NewEmail(cfg config.EmailConfig, logger *slog.Logger) *Email {
	return &Email{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (e *Email) Send(ctx context.Context, msg Message) error {
	if !e.cfg.Enabled {
		e.logger.Info("email disabled, skipping send", "to", msg.To, "subject", msg.Subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.cfg.From, e.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	e.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Verify dials the SMTP server to confirm connectivity and credentials.
func (e *Email) Verify(ctx context.Context) error {
	if !e.cfg.Enabled {
		e.logger.Info("email disabled, skipping connection check")
		return nil
	}

	closer, err := e.dialer.Dial()
	if err != nil {
		return fmt.Errorf("verify smtp connection: %w", err)
	}
	return closer.Close()
}
