package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/credara/lending-engine/internal/config"
	"github.com/credara/lending-engine/internal/repository"
	"github.com/credara/lending-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	logger.Info("Starting overdue scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// The sweep invalidates cached balance snapshots, so the scheduler needs
	// the same Redis client as the API server.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	bankRepo := repository.NewBankRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	transactor := repository.NewTransactor(db)

	lendingService := service.NewLendingService(bankRepo, loanRepo, paymentRepo, transactor, redisClient, cfg, logger)

	c := cron.New(cron.WithSeconds())

	_, err = c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		marked, err := lendingService.SweepOverdueInstallments(ctx, time.Now().UTC(), cfg.Scheduler.SweepLimit)
		if err != nil {
			logger.WithError(err).Error("overdue sweep failed")
			return
		}
		logger.WithField("marked", marked).Info("overdue sweep completed")
	})
	if err != nil {
		logger.Fatalf("Failed to schedule overdue sweep: %v", err)
	}

	c.Start()
	logger.Info("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	c.Stop()
	logger.Info("Scheduler stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Production always logs JSON; development defaults to readable text
	// unless JSON is asked for explicitly.
	switch {
	case cfg.IsProduction(), cfg.Logging.Format == "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case cfg.IsDevelopment():
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	return logger
}
