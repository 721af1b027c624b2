package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"storesync/internal/config"
	"storesync/internal/database"
	"storesync/internal/logger"
	"storesync/internal/sync"
	"storesync/internal/worker"
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
	defer db.Close()

	// Initialize sync engine
	events := sync.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SyncEventsTopic, logger)
	defer events.Close()
	orchestrator := sync.Build(db.DB, cfg.Sync, events, logger)

	// Initialize worker
	w := worker.New(cfg, logger, orchestrator)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
