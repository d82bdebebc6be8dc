// Package notify delivers operator notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bingoo/platform/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FraudNotifier is told about every fraud alert that is raised.
type FraudNotifier interface {
	NotifyFraudAlert(ctx context.Context, alert *domain.FraudAlert) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) NotifyFraudAlert(context.Context, *domain.FraudAlert) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts fraud alerts to an operator chat.
type TelegramNotifier struct {
	bot    sender
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier authorizes the bot token against the Bot API.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, logger)
}

// NewTelegramNotifierWithEndpoint is NewTelegramNotifier against a custom API endpoint
// (format "<base>/bot%s/%s").
func NewTelegramNotifierWithEndpoint(token, endpoint string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info("telegram notifier authorized", "username", api.Self.UserName, "chat_id", chatID)
	return &TelegramNotifier{bot: api, chatID: chatID, logger: logger}, nil
}

// NotifyFraudAlert sends a one-line summary of the alert.
func (n *TelegramNotifier) NotifyFraudAlert(_ context.Context, a *domain.FraudAlert) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatFraudAlert(a))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatFraudAlert renders the text sent for an alert.
func FormatFraudAlert(a *domain.FraudAlert) string {
	return fmt.Sprintf("Fraud alert [%s]\nuser: %s\n%s\nalert id: %s", a.Type, a.UserID, a.Description, a.ID)
}
