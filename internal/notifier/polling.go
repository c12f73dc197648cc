package notifier

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// CommandHandler is called when a user command is received and returns the reply.
type CommandHandler func(ctx context.Context, command string) string

// PollTimeout is the long-polling timeout in seconds.
var PollTimeout = 30

// StartPolling long-polls for chat commands from the configured chat and
// answers them. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			zap.S().Info("telegram polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = PollTimeout
		updates, err := t.bot.GetUpdates(u)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.S().Warnf("polling request failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			msg := update.Message
			if msg == nil || msg.Text == "" || msg.Chat == nil {
				continue
			}
			if msg.Chat.ID != t.ChatID {
				zap.S().Warnf("ignoring command from unknown chat %d", msg.Chat.ID)
				continue
			}
			text := strings.TrimSpace(msg.Text)
			zap.S().Infof("received command: %s", text)
			if reply := handler(ctx, text); reply != "" {
				if err := t.sendTo(msg.Chat.ID, reply); err != nil {
					zap.S().Errorf("send reply: %v", err)
				}
			}
		}
	}
}
