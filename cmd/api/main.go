package main

import (
	"log"

	"storesync/internal/api"
	"storesync/internal/config"
	"storesync/internal/database"
	"storesync/internal/logger"
	"storesync/internal/sync"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize sync engine
	events := sync.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SyncEventsTopic, logger)
	defer events.Close()
	orchestrator := sync.Build(db.DB, cfg.Sync, events, logger)

	// Initialize API server
	server := api.New(cfg, logger, db, orchestrator)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
