package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"toolpool-backend/internal/config"
	"toolpool-backend/internal/jobs"
	"toolpool-backend/internal/logger"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/repository/postgres"
	"toolpool-backend/internal/scheduler"
	"toolpool-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('release-deposits', 'mark-overdue', 'all')")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ToolPool Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services
	paymentClient := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey)
	emailSvc := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
		cfg.Server.BaseURL,
	)
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

	// Initialize Job Runner. No HTTP server in this process, so there is no
	// rate limiter to clean.
	jobRunner := jobs.NewJobRunner(db, &jobs.Services{
		Rental: rentalSvc,
		Email:  emailSvc,
	}, cfg, nil)

	// Run a single job and exit when requested
	if *runOnce != "" {
		switch *runOnce {
		case "release-deposits":
			jobRunner.ReleaseExpiredDeposits()
		case "mark-overdue":
			jobRunner.MarkOverdueRentals()
		case "all":
			jobRunner.RunAllJobs()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		logger.Info("Job run complete, exiting")
		return
	}

	// Otherwise run the scheduler until interrupted
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	logger.Info("Cronjob runner stopped")
}
