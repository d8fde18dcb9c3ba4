package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// SubscriptionGate checks that a user belongs to the required channel and group.
// A chat id of 0 disables that check.
type SubscriptionGate struct {
	sender     Sender
	channelID  int64
	groupID    int64
	ChannelURL string
	GroupURL   string
	logger     *zap.Logger
}

func NewSubscriptionGate(sender Sender, channelID int64, channelURL string, groupID int64, groupURL string, logger *zap.Logger) *SubscriptionGate {
	return &SubscriptionGate{
		sender:     sender,
		channelID:  channelID,
		groupID:    groupID,
		ChannelURL: channelURL,
		GroupURL:   groupURL,
		logger:     logger,
	}
}

// IsSubscribed reports membership in every configured chat. Lookup failures count as not subscribed.
func (g *SubscriptionGate) IsSubscribed(userID int64) bool {
	for _, chatID := range []int64{g.channelID, g.groupID} {
		if chatID == 0 {
			continue
		}
		member, err := g.sender.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
		})
		if err != nil {
			g.logger.Warn("Subscription check failed",
				zap.Int64("chat_id", chatID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return false
		}
		if !memberStatuses[member.Status] {
			return false
		}
	}
	return true
}
