package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/bookhaven/booking-api/internal/email"
	"github.com/bookhaven/booking-api/internal/repository/postgres"
	notificationService "github.com/bookhaven/booking-api/internal/service/notification"
	"github.com/bookhaven/booking-api/internal/worker"
	"github.com/bookhaven/booking-api/pkg/logger"
	"github.com/bookhaven/booking-api/pkg/messaging/redis"
	"github.com/bookhaven/booking-api/pkg/metrics"
)

// Config is read from the environment with the WORKER prefix, e.g.
// WORKER_DATABASE_URL, WORKER_SWEEP_INTERVAL.
type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL      string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	MetricsPort   int           `envconfig:"METRICS_PORT" default:"9091"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	ReminderLead  time.Duration `envconfig:"REMINDER_LEAD" default:"24h"`
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"100"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@bookhaven.app"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("worker", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	bookingRepo := postgres.NewBookingRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	emailSvc := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	notifier := notificationService.NewService(notificationRepo, emailSvc, broker, appLogger)

	m := metrics.NewMetrics("bookhaven", "reminder_worker")
	reminderWorker := worker.NewReminderWorker(bookingRepo, notifier, broker, appLogger, m, worker.ReminderConfig{
		Interval:  cfg.SweepInterval,
		LeadTime:  cfg.ReminderLead,
		BatchSize: cfg.BatchSize,
	})

	serveMetrics(cfg.MetricsPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down")
		cancel()
	}()

	reminderWorker.Start(ctx)
}

func serveMetrics(port int, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			appLogger.Fatal(err, "metrics server failed")
		}
	}()
}
