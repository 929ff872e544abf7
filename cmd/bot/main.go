package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/api/binance"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/api/bybit"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/api/coingecko"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/api/okx"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/baseline"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/config"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/cooldown"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/metrics"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/monitor"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/notify"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/storage"
	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/universe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open state store")
	}
	defer store.Close()

	baselines, err := baseline.New(store, cfg.Lookback(), cfg.MinSamples)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load baseline history")
	}
	cooldowns, err := cooldown.New(store, cfg.Cooldown())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load cooldown state")
	}

	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second
	capProvider := coingecko.NewClient(coingecko.ClientOptions{
		BaseURL:        cfg.CoinGeckoBase,
		RequestTimeout: requestTimeout,
	})

	sources := buildSources(cfg, requestTimeout)
	if len(sources) == 0 {
		log.Fatal().Strs("exchanges", cfg.Exchanges).Msg("No supported exchange configured")
	}

	refresher := universe.New(capProvider, cfg.TopN, cfg.RefreshInterval(), baselines, cooldowns)

	var notifier models.Notifier
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, running in DRY-RUN mode")
		notifier = notify.NewDryRun(cfg.WindowMin)
	} else {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, cfg.WindowMin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
		}
		notifier = telegram

		listener := notify.NewCommandListener(telegram, store, refresher)
		go listener.Run(ctx)
	}

	var recorder *metrics.Recorder
	if cfg.MetricsAddr != "" {
		recorder = metrics.New()
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	mon := monitor.New(monitor.Options{
		Sources:         sources,
		Universe:        refresher,
		Baseline:        baselines,
		Cooldown:        cooldowns,
		Notifier:        notifier,
		Store:           store,
		Metrics:         recorder,
		Window:          cfg.Window(),
		Poll:            time.Duration(cfg.PollSeconds) * time.Second,
		RequestTimeout:  requestTimeout,
		PctThreshold:    cfg.PctThreshold,
		ZScoreThreshold: cfg.ZScoreThreshold,
		MaxConcurrency:  cfg.MaxConcurrency,
	})

	log.Info().
		Strs("exchanges", cfg.Exchanges).
		Int("top_n", cfg.TopN).
		Int("window_min", cfg.WindowMin).
		Int("poll_seconds", cfg.PollSeconds).
		Msg("Starting volume spike monitor")

	if err := mon.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Monitor stopped unexpectedly")
	}
	log.Info().Msg("Shutting down")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		return storage.NewPostgresStore(cfg.DatabaseURL)
	}
	return storage.NewSQLiteStore(cfg.StateDBPath)
}

func buildSources(cfg *config.Config, timeout time.Duration) []models.Source {
	var sources []models.Source
	for _, name := range cfg.Exchanges {
		switch name {
		case "binance":
			sources = append(sources, binance.NewClient(binance.ClientOptions{RequestTimeout: timeout}))
		case "okx":
			sources = append(sources, okx.NewClient(okx.ClientOptions{RequestTimeout: timeout}))
		case "bybit":
			sources = append(sources, bybit.NewClient(bybit.ClientOptions{RequestTimeout: timeout}))
		default:
			log.Warn().Str("exchange", name).Msg("Unsupported exchange, ignoring")
		}
	}
	return sources
}
