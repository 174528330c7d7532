package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gastosmart/backend/internal/api"
	"github.com/gastosmart/backend/internal/config"
	"github.com/gastosmart/backend/internal/logger"
	"github.com/gastosmart/backend/internal/recommend"
	"github.com/gastosmart/backend/internal/regional"
	"github.com/gastosmart/backend/internal/store"
	fsstore "github.com/gastosmart/backend/internal/store/firestore"
	"github.com/gastosmart/backend/internal/store/memory"
)

func main() {
	// Parse command-line flags
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file (or set CONFIG_FILE env)")
		port       = flag.String("port", "", "HTTP server port (overrides config)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if cfg.Auth.SecretKey == config.InsecureDefaultSecret {
		log.Warn().Msg("Using the default signing secret - set SECRET_KEY before exposing this server")
	}

	ctx := context.Background()

	// Select storage: Firestore when a project is configured, otherwise the
	// in-memory store for local development.
	var (
		transactions store.TransactionStore
		settings     store.SettingsStore
		goals        store.GoalsStore
	)
	if cfg.Storage.ProjectID != "" {
		fs, err := fsstore.New(ctx, cfg.Storage.ProjectID, cfg.Storage.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Firestore")
		}
		defer fs.Close()
		transactions, settings, goals = fs, fs, fs
		log.Info().Str("project", cfg.Storage.ProjectID).Msg("Using Firestore storage")
	} else {
		mem := memory.New()
		transactions, settings, goals = mem, mem, mem
		log.Warn().Msg("No Firestore project configured - using in-memory storage, data is lost on restart")
	}

	// Build the engine and the routed handler
	format := regional.NewFormatter(cfg.Regional)
	engine := recommend.New(transactions, settings, goals, cfg.EngineOptions(format))

	handler := api.NewRouter(api.Deps{
		Engine:         engine,
		Transactions:   transactions,
		Settings:       settings,
		Goals:          goals,
		Regional:       cfg.Regional,
		Secret:         []byte(cfg.Auth.SecretKey),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
