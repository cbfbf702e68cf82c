package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropped95si/alpha-terminal/internal/api"
	"github.com/dropped95si/alpha-terminal/internal/api/handlers"
	"github.com/dropped95si/alpha-terminal/internal/auth"
	"github.com/dropped95si/alpha-terminal/internal/retrieve"
	"github.com/dropped95si/alpha-terminal/internal/snapshot"
	"github.com/dropped95si/alpha-terminal/internal/store"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/database"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// apiCmd starts the vault API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the signal vault API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                 - Health check
  GET  /api/signals            - Signals via tiered retrieval
  POST /api/ingest             - Scanner payload ingest
  GET  /api/review/candidates  - Top review candidates
  POST /api/review/labels      - Append a review label
  GET  /api/live               - Websocket ingest feed

The primary store is optional: without DATABASE_URL (or when the
database is unreachable) reads serve from the snapshot files and
writes report unavailable.

Example:
  go run ./cmd/terminal api
  go run ./cmd/terminal api --port 8089`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	ctx := context.Background()

	// The store is optional. Any failure here degrades reads to the
	// snapshot fallback instead of refusing to start.
	var runRepo *store.ScanRunRepository
	var signalRepo *store.SignalRepository
	var labelRepo *store.LabelRepository
	var primary retrieve.Store

	db, err := database.Open(ctx, cfg)
	switch {
	case err == nil:
		defer db.Close()
		if err := store.Migrate(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		runRepo = store.NewScanRunRepository(db.Pool)
		signalRepo = store.NewSignalRepository(db.Pool)
		labelRepo = store.NewLabelRepository(db.Pool)
		primary = signalRepo
		log.Info("Connected to primary store")
	case errors.Is(err, database.ErrNotConfigured):
		log.Info("Primary store not configured, serving snapshot fallback only")
	default:
		log.WithError(err).Warn("Primary store unreachable, serving snapshot fallback only")
	}

	snapshots := snapshot.New(cfg, log)
	orchestrator := retrieve.New(primary, snapshots, log)
	gate := auth.New(cfg)
	hub := handlers.NewHub(log)

	router := api.NewRouter(
		handlers.NewSignalsHandler(orchestrator, log),
		handlers.NewIngestHandler(gate, runRepo, signalRepo, hub, log),
		handlers.NewReviewHandler(gate, runRepo, signalRepo, labelRepo, log),
		handlers.NewLiveHandler(hub, log),
		log,
	)

	server := api.New(cfg, log, router)
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
