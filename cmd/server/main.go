package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"toolpool-backend/internal/api"
	"toolpool-backend/internal/config"
	"toolpool-backend/internal/jobs"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/middleware"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/repository/postgres"
	"toolpool-backend/internal/scheduler"
	"toolpool-backend/internal/security"
	"toolpool-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Local development overrides, ignored when the file is absent
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ToolPool Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	authenticator := middleware.NewAuthenticator(tokenManager)
	limiter := middleware.NewRateLimiter(
		middleware.NewMemoryCounterStore(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
		middleware.RealClock(),
	)

	// Initialize Payment Provider
	paymentClient := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
		cfg.Server.BaseURL,
	)

	// Initialize Services
	tierSvc := service.NewTierService(store.UserRepository, store.ToolRepository)
	authSvc := service.NewAuthService(store.UserRepository, tokenManager, emailSvc)
	toolSvc := service.NewToolService(store.ToolRepository, tierSvc)
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.ToolRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		paymentClient,
		service.RentalParams{
			DepositCents:       cfg.Rentals.DepositCents,
			ClaimWindowDays:    cfg.Rentals.ClaimWindowDays,
			MaxDurationDays:    cfg.Rentals.MaxDurationDays,
			CheckoutSuccessURL: cfg.Server.BaseURL + "/checkout/success",
			CheckoutCancelURL:  cfg.Server.BaseURL + "/checkout/cancel",
			AdminEmail:         cfg.Rentals.AdminEmail,
		},
	)
	subscriptionSvc := service.NewSubscriptionService(
		store.UserRepository,
		tierSvc,
		rentalSvc,
		paymentClient,
		service.SubscriptionParams{
			CheckoutSuccessURL: cfg.Server.BaseURL + "/subscription/success",
			CheckoutCancelURL:  cfg.Server.BaseURL + "/subscription/cancel",
		},
	)
	requestSvc := service.NewRequestBoardService(store.ToolRequestRepository, store.UserRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Initialize HTTP handlers and router
	handlers := api.NewHandlers(authSvc, toolSvc, rentalSvc, subscriptionSvc, requestSvc, noteSvc, cfg.Payment.WebhookSecret)
	router := api.NewRouter(handlers, authenticator, limiter)

	// Initialize scheduled jobs alongside the server
	jobRunner := jobs.NewJobRunner(db, &jobs.Services{
		Rental: rentalSvc,
		Email:  emailSvc,
	}, cfg, limiter)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
