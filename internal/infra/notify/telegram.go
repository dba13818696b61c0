package notify

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram pushes admin notifications (new sales, recalculation summaries)
// to a single chat. A nil *Telegram is safe to pass around: construction
// returns nil when no token is configured.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatID: chatID, log: log}, nil
}

// Notify sends a plain-text message; delivery failures are logged, never
// propagated — notifications must not break the business operation.
func (t *Telegram) Notify(text string) {
	if t == nil {
		return
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.log.Warn("telegram notification failed", "err", err)
	}
}
