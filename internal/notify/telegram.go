package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram pushes short plain-text notifications to users who linked a
// Telegram chat. Users without a chat ID are silently skipped.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewTelegram(token string, logger *slog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, logger: logger}, nil
}

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	if msg.ChatID == nil || msg.TextBody == "" {
		return nil
	}

	out := tgbotapi.NewMessage(*msg.ChatID, msg.TextBody)
	out.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(out); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	t.logger.Info("telegram message sent", "chat_id", *msg.ChatID)
	return nil
}

func (t *Telegram) Verify(ctx context.Context) error {
	if _, err := t.bot.GetMe(); err != nil {
		return fmt.Errorf("verify telegram bot: %w", err)
	}
	return nil
}
