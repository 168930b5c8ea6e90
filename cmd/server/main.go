package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petatwork/service-booking/internal/application"
	"github.com/petatwork/service-booking/internal/config"
	"github.com/petatwork/service-booking/internal/events"
	"github.com/petatwork/service-booking/internal/handler"
	"github.com/petatwork/service-booking/internal/pkg/auth"
	"github.com/petatwork/service-booking/internal/pkg/database"
	"github.com/petatwork/service-booking/internal/pkg/health"
	"github.com/petatwork/service-booking/internal/pkg/kafka"
	"github.com/petatwork/service-booking/internal/pkg/logger"
	"github.com/petatwork/service-booking/internal/pkg/middleware"
	"github.com/petatwork/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.ActorModel{},
			&repository.AnimalModel{},
			&repository.BookingModel{},
			&repository.EngagementModel{},
			&repository.PaymentModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := cfg.DBConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer and notifier
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()
	notifier := events.NewKafkaNotifier(kafkaProducer, log)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	actorRepo := repository.NewGormActorRepository(db)
	animalRepo := repository.NewGormAnimalRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	engagementRepo := repository.NewGormEngagementRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	// Initialize application services
	userService := application.NewUserService(actorRepo, bookingRepo, jwtManager, notifier, log)
	animalService := application.NewAnimalService(animalRepo, log)
	engagementService := application.NewEngagementService(engagementRepo, actorRepo, txManager, notifier, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		animalRepo,
		actorRepo,
		engagementService,
		txManager,
		notifier,
		cfg.AllowOwnerAccept,
		log,
	)
	paymentService := application.NewPaymentService(
		paymentRepo,
		bookingRepo,
		animalRepo,
		actorRepo,
		txManager,
		notifier,
		cfg.DailyRateCents,
		log,
	)

	// Start the notification consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	notificationConsumer := events.NewNotificationConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		events.NewLogMailer(log),
		log,
	)
	defer func() { _ = notificationConsumer.Close() }()

	go func() {
		log.Info("starting notification consumer")
		if err := notificationConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("notification consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(userService)
	animalHandler := handler.NewAnimalHandler(animalService, bookingService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	engagementHandler := handler.NewEngagementHandler(engagementService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	directoryHandler := handler.NewDirectoryHandler(userService)
	adminHandler := handler.NewAdminHandler(bookingService, paymentService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	authHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	animalHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	engagementHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	directoryHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
