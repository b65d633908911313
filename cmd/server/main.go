package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/config"
	"github.com/pilotage/micro/internal/db"
	"github.com/pilotage/micro/internal/jobs"
	"github.com/pilotage/micro/internal/server"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	cronFlag        = flag.Bool("cron", false, "Run the in-process job scheduler (also CRON=1)")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Erreur connexion DB")
	}
	if *migrateOnlyFlag {
		logger.Info().Msg("migrations completed; exiting as requested")
		return
	}

	if *cronFlag || config.ParseBool("CRON", false) {
		runner := jobs.NewRunner(dbConn, logger)
		if _, err := runner.Start(); err != nil {
			logger.Fatal().Err(err).Msg("cron scheduler failed to start")
		}
		logger.Info().Msg("job scheduler started")
	}

	tokens := auth.New(cfg.JWTSecret)
	handler := server.New(dbConn, tokens, logger)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		logger.Info().Str("env", cfg.Env).Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
	logger.Info().Msg("server gracefully stopped")
}
