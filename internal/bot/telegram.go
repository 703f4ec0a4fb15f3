package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Notifier pushes settled trades to a Telegram chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates the Telegram notifier.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("Telegram notifier initialized")
	return &Notifier{api: api, chatID: chatID}, nil
}

// NotifyTrade sends a trade summary. Failures are logged, not returned:
// a missed notification must never block the trading loop.
func (n *Notifier) NotifyTrade(direction, currency string, cashAmount, ccyAmount, price decimal.Decimal) {
	emoji := "🟢"
	if direction == "SELL" {
		emoji = "🔴"
	}

	text := fmt.Sprintf(
		"%s *%s %s*\n\nAmount: %s %s\nCash: %s\nPrice: %s",
		emoji, direction, currency,
		ccyAmount.StringFixed(8), currency,
		cashAmount.StringFixed(2),
		price.StringFixed(2),
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send trade notification")
	}
}
