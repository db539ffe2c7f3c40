package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/bookhaven/booking-api/internal/config"
	"github.com/bookhaven/booking-api/internal/email"
	availabilityHandler "github.com/bookhaven/booking-api/internal/handler/availability"
	authHandler "github.com/bookhaven/booking-api/internal/handler/auth"
	bookingHandler "github.com/bookhaven/booking-api/internal/handler/booking"
	clinicHandler "github.com/bookhaven/booking-api/internal/handler/clinic"
	dashboardHandler "github.com/bookhaven/booking-api/internal/handler/dashboard"
	healthHandler "github.com/bookhaven/booking-api/internal/handler/health"
	publicHandler "github.com/bookhaven/booking-api/internal/handler/public"
	"github.com/bookhaven/booking-api/internal/middleware"
	"github.com/bookhaven/booking-api/internal/repository/postgres"
	"github.com/bookhaven/booking-api/internal/router"
	authService "github.com/bookhaven/booking-api/internal/service/auth"
	availabilityService "github.com/bookhaven/booking-api/internal/service/availability"
	bookingService "github.com/bookhaven/booking-api/internal/service/booking"
	clinicService "github.com/bookhaven/booking-api/internal/service/clinic"
	dashboardService "github.com/bookhaven/booking-api/internal/service/dashboard"
	notificationService "github.com/bookhaven/booking-api/internal/service/notification"
	"github.com/bookhaven/booking-api/pkg/auth"
	"github.com/bookhaven/booking-api/pkg/logger"
	"github.com/bookhaven/booking-api/pkg/messaging/redis"
	"github.com/bookhaven/booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	authSvc := authService.NewService(userRepo, tokenSvc, security.NewPasswordHasher(0))
	clinicSvc := clinicService.NewService(clinicRepo)
	availabilitySvc := availabilityService.NewService(availabilityRepo, clinicRepo)

	emailSvc := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	notifierSvc := notificationService.NewService(notificationRepo, emailSvc, broker, appLogger)

	bookingSvc := bookingService.NewService(bookingRepo, clinicRepo, availabilitySvc, notifierSvc, appLogger)
	dashboardSvc := dashboardService.NewService(bookingRepo, clinicRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		publicHandler.NewHandler(clinicSvc, bookingSvc),
		clinicHandler.NewHandler(clinicSvc),
		availabilityHandler.NewHandler(availabilitySvc, clinicSvc),
		bookingHandler.NewHandler(bookingSvc, clinicSvc),
		dashboardHandler.NewHandler(dashboardSvc),
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
