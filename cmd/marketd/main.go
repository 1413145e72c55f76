package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"hotel-market-backend/config"
	"hotel-market-backend/internal/api"
	"hotel-market-backend/internal/db"
	"hotel-market-backend/internal/engine"
	"hotel-market-backend/internal/notification"
	"hotel-market-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "marketd ", log.LstdFlags)

	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("could not load .env file: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick the data source once; everything downstream sees the same
	// interface.
	var appStore store.Store
	switch cfg.DataSource.Mode {
	case config.ModeSynthetic:
		logger.Printf("running against a synthetic market (seed=%d, %d listings per city)",
			cfg.DataSource.Seed, cfg.DataSource.ListingsPerCity)
		appStore = store.NewSyntheticSource(
			cfg.DataSource.Seed,
			store.DefaultSyntheticCities,
			cfg.DataSource.ListingsPerCity,
			time.Now().UTC(),
		)
	default:
		gormDB, err := db.Init(&cfg.Database)
		if err != nil {
			logger.Fatalf("failed to initialize database: %v", err)
		}
		appStore = store.NewGormStore(gormDB)
	}
	logger.Println("data store initialized")

	// Push notifications are optional; without VAPID keys alerts are only
	// stored in snapshots.
	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
	} else {
		logger.Println("VAPID keys are not configured; push notifications disabled")
	}

	analysisEngine := engine.NewService(cfg, appStore, pool)
	go analysisEngine.Run(ctx)

	router := api.NewRouter(cfg, appStore, analysisEngine, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
