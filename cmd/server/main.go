package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"civicdesk/internal/app"
	"civicdesk/internal/config"
	"civicdesk/internal/httpapi"
	"civicdesk/internal/notify"
	"civicdesk/internal/repository"
	"civicdesk/internal/service"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting civicdesk server",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to reach database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to init migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	officeRepo := repository.NewOfficeRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.TelegramToken != "" {
		tgBot, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create telegram bot", zap.Error(err))
		}
		notifier = notify.NewTelegramNotifier(tgBot, logger)
		logger.Info("Telegram notifications enabled")
	} else {
		logger.Info("TELEGRAM_TOKEN not set, notifications disabled")
	}

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL, logger)
	officeService := service.NewOfficeService(officeRepo, serviceRepo, scheduleRepo, logger)
	requestService := service.NewRequestService(requestRepo, serviceRepo, userRepo, notifier, logger)
	appointmentService := service.NewAppointmentService(appointmentRepo, requestRepo, scheduleRepo, userRepo, notifier, logger)

	reminder := app.NewReminder(appointmentRepo, userRepo, notifier, logger)
	reminder.Start(ctx)
	defer reminder.Stop()

	handler := httpapi.NewHandler(authService, officeService, requestService, appointmentService, logger)
	limiter := httpapi.NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})

	chain := corsHandler.Handler(
		httpapi.SecurityHeaders(
			httpapi.RequestLogger(logger)(
				limiter.Middleware(handler.Routes()))))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           chain,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
