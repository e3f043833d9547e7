package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhaveri/fie/internal/api"
	"github.com/jhaveri/fie/internal/api/handlers"
	"github.com/jhaveri/fie/internal/store"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/database"
	"github.com/jhaveri/fie/pkg/logger"
	"github.com/jhaveri/fie/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                                 - Health check
  GET  /api/signals/{symbol}                   - Latest technical analysis
  GET  /api/sectors                            - Sector strength ranking
  GET  /api/clients/{clientID}/recommendations - Latest recommendations
  POST /api/pipeline/run                       - Trigger a pipeline run
  WS   /ws/runs                                - Run event stream

Example:
  go run ./cmd/fie api
  go run ./cmd/fie api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FIE API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Assemble the pipeline for the run trigger
	provider := newPriceProvider(cfg, log, redisClient)
	orchestrator, err := newOrchestrator(cfg, log, db, provider)
	if err != nil {
		return fmt.Errorf("assemble pipeline: %w", err)
	}

	// 6. Create handlers and router
	hub := api.NewHub(log)

	signalsHandler := handlers.NewSignalsHandler(
		store.NewSignalRepository(db.Pool),
		store.NewSectorRepository(db.Pool),
		log,
	)
	adviceHandler := handlers.NewAdviceHandler(store.NewRecommendationRepository(db.Pool), log)
	pipelineHandler := handlers.NewPipelineHandler(orchestrator, hub, 30*time.Minute, log)

	router := api.NewRouter(signalsHandler, adviceHandler, pipelineHandler, hub, log)

	// 7. Start server with graceful shutdown
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
