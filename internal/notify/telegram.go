package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/straye-as/crm-core/internal/domain"
	"go.uber.org/zap"
)

// messageSender is the subset of *tgbotapi.BotAPI the notifier needs
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts alerts to a single Telegram chat
type TelegramNotifier struct {
	api    messageSender
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier authenticates the bot token against the Telegram API
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info("telegram notifier authorized", zap.String("bot", api.Self.UserName))
	return newTelegramNotifier(api, chatID, logger), nil
}

func newTelegramNotifier(api messageSender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) NotifyBudgetAlert(ctx context.Context, alert *domain.BudgetAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(alert))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	n.logger.Debug("budget alert sent to telegram",
		zap.String("alert_id", alert.ID.String()),
		zap.Int64("chat_id", n.chatID),
	)
	return nil
}

// FormatAlert renders the chat text for an alert
func FormatAlert(alert *domain.BudgetAlert) string {
	var prefix string
	switch alert.AlertType {
	case domain.AlertTypeBudgetExceeded:
		prefix = "🚨 Budget exceeded"
	case domain.AlertTypeThresholdReached:
		prefix = "⚠️ Budget warning"
	default:
		prefix = "Budget alert"
	}
	return fmt.Sprintf("%s (%d%%)\n%s", prefix, alert.ThresholdPercentage, alert.Message)
}
