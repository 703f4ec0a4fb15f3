package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the hamster
type Config struct {
	// Database: sqlite file path or postgres:// URL
	DatabasePath string

	// Poll loop
	TickInterval time.Duration

	// Decision timing
	QuietThreshold  time.Duration // no new reading for this long -> decision reached
	DecisionTimeout time.Duration // open decision abandoned after this long without readings
	SessionTimeout  time.Duration // open session abandoned this long after its start
	DeadTime        time.Duration // readings closer together are sensor bounce, not turns

	// Wallet
	CashFloor   decimal.Decimal // below this the hamster cannot buy
	InitialCash decimal.Decimal // CASH seeded on first run

	// Whether a completed trade also closes the session
	CloseSessionOnTrade bool

	// Price oracle
	BinanceAPIURL   string
	OracleTimeout   time.Duration
	TradableSymbols []string

	// Telegram (optional)
	TelegramToken  string
	TelegramChatID int64

	// Mode
	Debug bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "data/cryptohamster.db"),

		TickInterval: getEnvDuration("TICK_INTERVAL", time.Second),

		QuietThreshold:  getEnvDuration("QUIET_THRESHOLD", 5*time.Second),
		DecisionTimeout: getEnvDuration("DECISION_TIMEOUT", 120*time.Second),
		SessionTimeout:  getEnvDuration("SESSION_TIMEOUT", time.Hour),
		DeadTime:        getEnvDuration("DEAD_TIME", 700*time.Millisecond),

		CashFloor:   getEnvDecimal("CASH_FLOOR", decimal.NewFromInt(10)),
		InitialCash: getEnvDecimal("INITIAL_CASH", decimal.NewFromInt(10000)),

		CloseSessionOnTrade: getEnvBool("CLOSE_SESSION_ON_TRADE", false),

		BinanceAPIURL:   getEnv("BINANCE_API_URL", "https://api.binance.com"),
		OracleTimeout:   getEnvDuration("ORACLE_TIMEOUT", 10*time.Second),
		TradableSymbols: getEnvList("TRADABLE_SYMBOLS", []string{"BTC", "ETH", "DOGE", "ADA", "AVAX", "XRP"}),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		Debug: getEnvBool("DEBUG", false),
	}

	// Parse chat ID
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	// Validate required fields
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is required")
	}
	if cfg.QuietThreshold >= cfg.DecisionTimeout {
		return nil, fmt.Errorf("QUIET_THRESHOLD must be shorter than DECISION_TIMEOUT")
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
