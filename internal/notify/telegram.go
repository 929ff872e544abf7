// Package notify delivers spike alerts to Telegram and answers the
// bot's chat commands.
package notify

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
)

// Telegram sends spike alerts to a single chat.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	windowMin int
	logger    zerolog.Logger
}

// NewTelegram authorizes the bot and binds it to chatID.
func NewTelegram(token string, chatID int64, windowMin int) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing Telegram bot: %w", err)
	}

	logger := log.With().Str("component", "telegram").Logger()
	logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")

	return &Telegram{
		bot:       bot,
		chatID:    chatID,
		windowMin: windowMin,
		logger:    logger,
	}, nil
}

// SendAlert delivers one spike alert. Best-effort: the caller commits
// the cooldown whether or not delivery succeeds.
func (t *Telegram) SendAlert(symbol models.Symbol, verdict models.SignalVerdict, exchanges []string) error {
	msg := tgbotapi.NewMessage(t.chatID, formatAlert(symbol, verdict, exchanges, t.windowMin))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending alert: %w", err)
	}
	return nil
}

func formatAlert(symbol models.Symbol, v models.SignalVerdict, exchanges []string, windowMin int) string {
	used := strings.Join(exchanges, ", ")
	if used == "" {
		used = "—"
	}
	return fmt.Sprintf(
		"⚡️ Аномальный рост объёма: <b>%s (%s)</b>\n"+
			"Окно: %d мин | Биржи: %s\n"+
			"Текущий объём: %.0f\n"+
			"База: mean=%.0f, σ=%.0f\n"+
			"Δ к базе: <b>%+.0f%%</b> | z=%.2f\n"+
			"Время: %s",
		symbol.Name, symbol.Ticker,
		windowMin, used,
		v.Observed,
		v.BaselineMean, v.BaselineStd,
		v.PctChange, v.ZScore,
		time.Now().Format("2006-01-02 15:04:05"),
	)
}

// DryRun is the notifier used when Telegram credentials are absent:
// alerts go to the log instead of a chat.
type DryRun struct {
	windowMin int
	logger    zerolog.Logger
}

// NewDryRun creates a log-only notifier.
func NewDryRun(windowMin int) *DryRun {
	return &DryRun{
		windowMin: windowMin,
		logger:    log.With().Str("component", "telegram_dryrun").Logger(),
	}
}

// SendAlert logs the alert text that would have been sent.
func (d *DryRun) SendAlert(symbol models.Symbol, verdict models.SignalVerdict, exchanges []string) error {
	d.logger.Info().
		Str("symbol", symbol.Ticker).
		Str("reason", string(verdict.Reason)).
		Msg("DRY-RUN alert:\n" + formatAlert(symbol, verdict, exchanges, d.windowMin))
	return nil
}
