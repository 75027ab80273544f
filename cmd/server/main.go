package main

import (
	"os"

	"cinecore/internal/config"
	"cinecore/internal/db"
	"cinecore/internal/logging"
	"cinecore/internal/router"
	"cinecore/internal/services"
	"cinecore/internal/utils"
)

func main() {
	cfg, foundEnv := config.Load()

	log := logging.Init(cfg.LogLevel, cfg.LogFormat)
	if !foundEnv {
		log.Info("no .env file found, reading settings from the environment")
	}

	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	svc := services.New(db.DB, cfg, utils.GetCache())
	r := router.New(db.DB, svc, cfg.SessionSecret)

	log.Info("cinecore server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
