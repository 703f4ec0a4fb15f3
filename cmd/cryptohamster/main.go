// Cryptohamster - wheel-driven crypto trading simulator
//
// A sensor-instrumented hamster wheel drives a decision state machine:
// the hamster running opens a session, each stretch of running resolves
// one decision (buy/sell, currency, amount) from the debounced turn
// count, and a completed cycle settles a simulated trade against the
// persisted wallet.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hamsterlabs/cryptohamster/internal/bot"
	"github.com/hamsterlabs/cryptohamster/internal/config"
	"github.com/hamsterlabs/cryptohamster/internal/database"
	"github.com/hamsterlabs/cryptohamster/internal/decision"
	"github.com/hamsterlabs/cryptohamster/internal/oracle"
)

const version = "1.0.0"

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("version", version).
		Strs("symbols", cfg.TradableSymbols).
		Msg("🐹 Cryptohamster starting...")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	if err := db.EnsureWallet(cfg.InitialCash); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed wallet")
	}

	// Price oracle
	quotes := oracle.NewBinance(cfg.BinanceAPIURL, cfg.TradableSymbols, cfg.OracleTimeout)

	// Decision engine
	engine := decision.NewEngine(cfg, db, quotes)

	// Optional Telegram notifications
	if cfg.TelegramToken != "" {
		notifier, err := bot.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram disabled")
		} else {
			engine.SetNotifier(notifier)
		}
	}

	// Graceful shutdown on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("🛑 Received shutdown signal")
		cancel()
	}()

	err = engine.Run(ctx)
	switch {
	case errors.Is(err, decision.ErrExhausted):
		log.Info().Msg("Wallet exhausted, operator intervention required")
	case errors.Is(err, context.Canceled):
		// normal shutdown
	case err != nil:
		log.Fatal().Err(err).Msg("Engine failed")
	}

	log.Info().Msg("👋 Goodbye!")
}
