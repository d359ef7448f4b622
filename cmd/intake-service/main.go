package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"rifa-service/internal/auth"
	"rifa-service/internal/config"
	"rifa-service/internal/database/migrations"
	"rifa-service/internal/kafka"
	"rifa-service/internal/logger"
	"rifa-service/internal/registration"
	"rifa-service/internal/registration/api"
	regdb "rifa-service/internal/registration/db"
	"rifa-service/internal/storage"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger("intake-service")
	defer log.Close()

	log.Info("APP", "Starting Intake Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	if cfg.Admin.JWTSecret == "" {
		log.Fatal("CONFIG", "ADMIN_JWT_SECRET not set")
	}

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	migrationOpts := migrations.DefaultOptions()
	if migrationOpts.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrationOpts)
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	store, err := storage.NewFilesystemStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatal("STORAGE", fmt.Sprintf("Failed to initialize content store: %v", err))
	}
	log.Info("STORAGE", fmt.Sprintf("Content store ready at %s", cfg.Storage.Dir))

	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{kafka.TopicSubmissionValidated}); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	log.Info("KAFKA", "Kafka producer initialized")

	validator := registration.NewValidator(cfg.Raffle.MinTickets, cfg.Raffle.MaxProofFileBytes)
	service := registration.NewService(&regdb.DB{Bun: bunDB}, store, producer, validator, log)
	handler := api.NewHandler(service, log, cfg.Raffle.MinTickets, cfg.Raffle.MaxProofFileBytes)

	log.Info("HTTP", "Setting up router")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/methods", handler.GetPaymentMethods)
			r.Get("/presets", handler.GetTicketPresets)
			r.Post("/quote", handler.Quote)
		})
		r.Post("/registrations", handler.SubmitRegistration)
	})
	log.Info("ROUTER", "Public catalog and registration routes registered under /api")

	// --- Operator Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Admin.JWTSecret))
		r.Route("/api/admin/registrations", func(r chi.Router) {
			r.Get("/", handler.ListRegistrations)
			r.Post("/{id}/validate", handler.ValidateRegistration)
			r.Get("/{id}/codes", handler.GetRegistrationCodes)
		})
	})
	log.Info("ROUTER", "Operator routes registered under /api/admin/registrations")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Intake Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Intake Service shutdown complete")
	}
}
