package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/storage"
)

// UniverseReader exposes the current monitored universe to the /top
// command without letting the command trigger a refresh.
type UniverseReader interface {
	Snapshot() models.Universe
}

// CommandListener answers /status and /top in the bot's chat.
type CommandListener struct {
	telegram *Telegram
	store    storage.Store
	universe UniverseReader
}

// NewCommandListener wires chat commands to the spike history and the
// current universe.
func NewCommandListener(telegram *Telegram, store storage.Store, universe UniverseReader) *CommandListener {
	return &CommandListener{
		telegram: telegram,
		store:    store,
		universe: universe,
	}
}

// Run consumes bot updates until ctx is cancelled.
func (l *CommandListener) Run(ctx context.Context) {
	logger := log.With().Str("component", "commands").Logger()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := l.telegram.bot.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			l.telegram.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			var reply string
			switch update.Message.Command() {
			case "status":
				reply = l.statusReply()
			case "top":
				reply = l.topReply()
			default:
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			if _, err := l.telegram.bot.Send(msg); err != nil {
				logger.Error().Err(err).Msg("Failed to answer command")
			}
		}
	}
}

func (l *CommandListener) statusReply() string {
	spikes, err := l.store.RecentSpikes(10)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read spike history")
		return "Не удалось прочитать историю срабатываний."
	}
	if len(spikes) == 0 {
		return "Пока срабатываний нет. Мониторинг идёт ✅"
	}

	lines := []string{"Последние срабатывания:"}
	for _, s := range spikes {
		lines = append(lines, fmt.Sprintf("- %s: %+.0f%% (z=%.2f) в %s",
			s.Symbol, s.Pct, s.ZScore, s.Timestamp.Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

func (l *CommandListener) topReply() string {
	u := l.universe.Snapshot()
	if len(u.Symbols) == 0 {
		return "Вселенная ещё не загружена, попробуйте позже."
	}

	tickers := make([]string, 0, len(u.Symbols))
	for _, s := range u.Symbols {
		tickers = append(tickers, s.Ticker)
	}
	return fmt.Sprintf("Топ-%d по mcap (CoinGecko):\n%s",
		len(tickers), strings.Join(tickers, ", "))
}
