package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/config"
	"pomodoro/timer/internal/db"
	"pomodoro/timer/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer database.Close()

	applied, err := db.RunMigrations(context.Background(), database, cfg.MigrationsDir)
	if err != nil {
		log.Fatal().Err(err).Strs("applied", applied).Msg("Failed to run migrations")
	}
	if len(applied) == 0 {
		log.Info().Str("path", cfg.DBPath).Msg("Database schema is up to date")
		return
	}
	log.Info().Str("path", cfg.DBPath).Strs("applied", applied).Msg("Migrations applied")
}
