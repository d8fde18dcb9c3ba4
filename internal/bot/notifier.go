package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Notifier tells shoppers when a payment settles
type Notifier struct {
	sender Sender
	logger *zap.Logger
}

func NewNotifier(sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

// Handle is an events.Handler for order status events
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event domain.OrderStatusChanged
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	if event.Type != domain.EventOrderStatusChanged {
		return nil
	}

	text := StatusText(event)
	if text == "" {
		return nil
	}

	if _, err := n.sender.Send(tgbotapi.NewMessage(event.UserID, text)); err != nil {
		return fmt.Errorf("failed to notify user %d: %w", event.UserID, err)
	}

	n.logger.Info("Order status notification sent",
		zap.String("order_id", event.OrderID.String()),
		zap.String("status", string(event.Status)),
	)
	return nil
}

// StatusText is the user-facing message for a status change, or "" when there is nothing to say
func StatusText(event domain.OrderStatusChanged) string {
	switch event.Status {
	case domain.OrderStatusPaid:
		return fmt.Sprintf("Payment received for order %s. Thank you!", event.OrderID)
	case domain.OrderStatusFailed:
		return fmt.Sprintf("The payment for order %s did not go through. Please place the order again.", event.OrderID)
	default:
		return ""
	}
}
