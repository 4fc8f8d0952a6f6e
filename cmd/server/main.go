package main

import (
	"log"
	"net/http"
	"time"

	"stockroom/m/internal/api"
	"stockroom/m/internal/config"
	"stockroom/m/internal/database"
	"stockroom/m/internal/logger"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	handler := api.New(db, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("stockroom server starting on :%s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
