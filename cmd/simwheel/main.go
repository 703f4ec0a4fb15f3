// Simwheel appends synthetic wheel readings so the decision engine can be
// exercised without the physical sensor. It alternates run bursts and
// rest gaps; during a burst one active sample lands every spin interval.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hamsterlabs/cryptohamster/internal/config"
	"github.com/hamsterlabs/cryptohamster/internal/database"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	spin := envDuration("SIM_SPIN_INTERVAL", time.Second)
	burst := envDuration("SIM_BURST", 20*time.Second)
	rest := envDuration("SIM_REST", 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	log.Info().
		Dur("spin", spin).
		Dur("burst", burst).
		Dur("rest", rest).
		Msg("🎡 Simulated wheel started")

	for ctx.Err() == nil {
		burstEnd := time.Now().Add(burst)
		for ctx.Err() == nil && time.Now().Before(burstEnd) {
			if _, err := db.AppendReading(time.Now(), true); err != nil {
				log.Error().Err(err).Msg("Failed to append reading")
			}
			sleep(ctx, spin)
		}
		log.Info().Dur("rest", rest).Msg("Wheel resting")
		sleep(ctx, rest)
	}

	log.Info().Msg("Simulated wheel stopped")
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
