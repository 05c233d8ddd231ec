package telegram

import (
	"context"
	"time"

	"swapcash/internal/config"
	"swapcash/pkg/logger"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const sendTimeout = 10 * time.Second

// Notifier delivers messages over the bot. Failures are logged and dropped;
// delivery is never allowed to affect the state change that triggered it.
type Notifier struct {
	bot    *telego.Bot
	cfg    *config.TelegramConfig
	logger *logger.Logger
}

func NewNotifier(bot *telego.Bot, cfg *config.TelegramConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		bot:    bot,
		cfg:    cfg,
		logger: log,
	}
}

func (n *Notifier) NotifyUser(telegramID int64, message string) {
	if !n.cfg.NotifyUsers {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if _, err := n.bot.SendMessage(ctx, tu.Message(tu.ID(telegramID), message)); err != nil {
		n.logger.WithError(err).WithTelegramID(telegramID).Warn("Failed to notify user")
	}
}

func (n *Notifier) NotifyAdmins(message string) {
	if !n.cfg.NotifyAdmins || n.cfg.AdminChatID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if _, err := n.bot.SendMessage(ctx, tu.Message(tu.ID(n.cfg.AdminChatID), message)); err != nil {
		n.logger.WithError(err).Warn("Failed to notify admins")
	}
}
