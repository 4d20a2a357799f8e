// Package notify delivers short operator notifications (sync results, daily reports).
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/config"
	"github.com/mamadbah2/linetrack/pkg/clients/whatsapp"
)

// Notifier sends a plain text notification.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

// WhatsApp sends notifications to the line supervisor's WhatsApp number.
type WhatsApp struct {
	sender    whatsapp.Sender
	recipient string
	logger    *zap.Logger
}

// NewWhatsApp builds a notifier delivering to recipient through sender.
func NewWhatsApp(sender whatsapp.Sender, recipient string, logger *zap.Logger) *WhatsApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsApp{sender: sender, recipient: recipient, logger: logger}
}

func (w *WhatsApp) Notify(ctx context.Context, text string) error {
	id, err := w.sender.SendText(ctx, w.recipient, text)
	if err != nil {
		return fmt.Errorf("notify %s: %w", w.recipient, err)
	}
	w.logger.Debug("notification sent", zap.String("message_id", id))
	return nil
}

// New returns a WhatsApp notifier when an access token is configured, Nop otherwise.
func New(cfg config.WhatsAppConfig, logger *zap.Logger) Notifier {
	if cfg.AccessToken == "" {
		return Nop{}
	}
	return NewWhatsApp(whatsapp.NewClient(cfg), cfg.SupervisorID, logger)
}
