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

	"studio-booking-backend/config"
	"studio-booking-backend/internal/admin"
	"studio-booking-backend/internal/api"
	"studio-booking-backend/internal/db"
	"studio-booking-backend/internal/email"
	"studio-booking-backend/internal/notification"
	"studio-booking-backend/internal/store"
	"studio-booking-backend/internal/sweeper"
)

func main() {
	logger := log.New(os.Stdout, "studio-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Server.JWTSecret == "" {
		logger.Fatalf("server.jwt_secret must be configured")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	gate := admin.NewGate(appStore, cfg.Admin.AllowList, time.Duration(cfg.Admin.CacheTTLSeconds)*time.Second)
	sender := email.NewHTTPSender(&cfg.Email)

	emitter := notification.NewEmitter(cfg.Notifications.Workers, cfg.Notifications.QueueSize, appStore, &webpushOptions)
	emitter.Start(ctx)

	sweepSvc := sweeper.NewService(cfg, appStore, emitter, sender)
	go sweepSvc.Run(ctx)

	router := api.NewRouter(cfg, appStore, gate, emitter, sender, &webpushOptions)
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
