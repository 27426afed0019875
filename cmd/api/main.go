package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	_ "github.com/madaure/backend/docs"
	"github.com/madaure/backend/internal/content"
	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/handlers"
	"github.com/madaure/backend/internal/mailer"
	"github.com/madaure/backend/internal/repositories"
	"github.com/madaure/backend/internal/services"
	"github.com/madaure/backend/libs/auth/service"
	"github.com/madaure/backend/libs/config"
	"github.com/madaure/backend/libs/logger"
	"go.uber.org/zap"
)

// @title MADAURE API
// @version 1.0
// @description E-learning platform API: lessons, summaries, quizzes, subscriptions and student support
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@madaure.dz

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting MADAURE API", zap.String("activityMode", cfg.Activity.Mode))

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db, cfg.MigrationDir); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	checks := map[string]healthCheck{
		"database": db.PingContext,
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	lessonRepo := repositories.NewLessonRepository(db, logger.Logger)
	summaryRepo := repositories.NewSummaryRepository(db, logger.Logger)
	subscriptionRepo := repositories.NewSubscriptionRepository(db, logger.Logger)
	quizRepo := repositories.NewQuizRepository(db, logger.Logger)
	activityRepo := repositories.NewActivityRepository(db, logger.Logger)
	notificationRepo := repositories.NewNotificationRepository(db, logger.Logger)
	ticketRepo := repositories.NewTicketRepository(db, logger.Logger)
	threadRepo := repositories.NewThreadRepository(db, logger.Logger)

	activityService := services.NewActivityService(activityRepo, userRepo, logger.Logger)

	// Activity entries and notification emails go through the worker queue, or inline in sync mode
	var (
		emitter    events.Emitter
		dispatcher events.EmailDispatcher
	)
	if cfg.Activity.Mode == config.ActivityModeSync {
		emitter = events.NewSyncEmitter(activityService, logger.Logger)
		dispatcher = events.NewSyncEmailDispatcher(
			mailer.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From),
			logger.Logger,
		)
	} else {
		// Connect to Redis
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}

		// Create Asynq client
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()

		queue := events.NewQueueEmitter(asynqClient, logger.Logger)
		emitter, dispatcher = queue, queue
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize services
	renderer := content.NewRenderer(summaryRepo, logger.Logger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, dispatcher, logger.Logger)
	authService := services.NewAuthService(userRepo, tokenGenerator, emitter, logger.Logger)
	userService := services.NewUserService(userRepo, logger.Logger)
	lessonService := services.NewLessonService(lessonRepo, renderer, emitter, logger.Logger)
	summaryService := services.NewSummaryService(summaryRepo, logger.Logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, notificationService, emitter, logger.Logger)
	quizService := services.NewQuizService(quizRepo, lessonRepo, userRepo, emitter, logger.Logger)
	ticketService := services.NewTicketService(ticketRepo, notificationService, emitter, logger.Logger)
	threadService := services.NewThreadService(threadRepo, userRepo, notificationService, emitter, logger.Logger)
	searchService := services.NewSearchService(lessonRepo, summaryRepo, quizRepo, userRepo, logger.Logger)

	// Setup router
	r := newRouter(routerConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		SwaggerURL:     fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port),
	}, logger.Logger, handlers.NewGuards(tokenGenerator), checks,
		handlers.NewAuthHandler(authService, userService, logger.Logger),
		handlers.NewLessonHandler(lessonService, logger.Logger),
		handlers.NewSummaryHandler(summaryService, logger.Logger),
		handlers.NewSubscriptionHandler(subscriptionService, logger.Logger),
		handlers.NewQuizHandler(quizService, logger.Logger),
		handlers.NewActivityHandler(activityService, logger.Logger),
		handlers.NewNotificationHandler(notificationService, logger.Logger),
		handlers.NewTicketHandler(ticketService, logger.Logger),
		handlers.NewThreadHandler(threadService, logger.Logger),
		handlers.NewSearchHandler(searchService, logger.Logger),
	)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies the migrations found in dir
func runMigrations(db *sql.DB, dir string) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "madaure_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Fall back to the parent directory when started from cmd/api
	migrationPath := "file://" + dir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if _, err := os.Stat("../../" + dir); err == nil {
			migrationPath = "file://../../" + dir
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
