package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"rifa-service/internal/config"
	"rifa-service/internal/issuer"
	issuerdb "rifa-service/internal/issuer/db"
	rediswrap "rifa-service/internal/issuer/redis"
	"rifa-service/internal/kafka"
	"rifa-service/internal/logger"
	"rifa-service/internal/mailer"
	"rifa-service/internal/models"
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

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger("issuer-service")
	defer log.Close()

	log.Info("APP", "Starting Issuer Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	smtpMailer := mailer.NewSMTPMailer(cfg.Email)

	service := issuer.NewService(
		&issuerdb.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient, cfg.Raffle.IssuanceLockTTL),
		smtpMailer,
		log,
		cfg.Raffle.CodeCap,
		cfg.Raffle.DrawAttemptsPerCode,
	)

	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{kafka.TopicSubmissionValidated}); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.Start(ctx, func(ctx context.Context, event models.SubmissionValidatedEvent) error {
		return service.IssueCodes(ctx, event.SubmissionID)
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, stopping consumer")
	cancel()
	time.Sleep(1 * time.Second)
	log.Info("APP", "Issuer Service shutdown complete")
}
