// Package notify contains the outbound notification transports and the
// message rendering they share.
package notify

import (
	"context"
	"log/slog"
)

// Message is a rendered notification ready for transport.
type Message struct {
	To       string // recipient email address
	ChatID   *int64 // optional Telegram chat, nil when the user has none
	Subject  string
	HTMLBody string
	TextBody string
}

// Dispatcher performs a single send attempt. No retry or queueing;
// callers treat a returned error as terminal for the attempt.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
	Verify(ctx context.Context) error
}

// Fanout sends through a primary channel and mirrors to a best-effort
// secondary one. Only the primary outcome decides success.
type Fanout struct {
	primary   Dispatcher
	secondary Dispatcher
	logger    *slog.Logger
}

func NewFanout(primary, secondary Dispatcher, logger *slog.Logger) *Fanout {
	return &Fanout{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fanout) Send(ctx context.Context, msg Message) error {
	err := f.primary.Send(ctx, msg)
	if f.secondary != nil {
		if secErr := f.secondary.Send(ctx, msg); secErr != nil {
			f.logger.Warn("secondary channel send failed", "to", msg.To, "error", secErr)
		}
	}
	return err
}

func (f *Fanout) Verify(ctx context.Context) error {
	return f.primary.Verify(ctx)
}
