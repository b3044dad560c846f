package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/chatimage/backend/docs"
	"github.com/chatimage/backend/internal/clients/openai"
	"github.com/chatimage/backend/internal/config"
	"github.com/chatimage/backend/internal/handlers"
	"github.com/chatimage/backend/internal/logger"
	loggerMiddleware "github.com/chatimage/backend/internal/logger/middleware"
	"github.com/chatimage/backend/internal/middlewares"
	"github.com/chatimage/backend/internal/repositories"
	"github.com/chatimage/backend/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	maxRequestSize = 1 << 20 // 1MB
	// upstreamGrace lets a timed-out upstream call report 502 before the request deadline
	upstreamGrace = 2 * time.Second
)

// @title ChatImage API
// @version 1.0
// @description Signup/login backend with chat and image generation pass-through endpoints

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
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

	logger.Logger.Info("Starting ChatImage backend")

	policy, err := services.ParsePasswordPolicy(cfg.Auth.PasswordPolicy)
	if err != nil {
		logger.Logger.Fatal("Invalid password policy", zap.Error(err))
	}

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if cfg.Upstream.APIKey == "" {
		logger.Logger.Warn("OPENAI_API_KEY is not set, /chat and /generate-image will return 502")
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)

	// Initialize upstream client
	aiClient := openai.NewClient(openai.Config{
		APIKey:    cfg.Upstream.APIKey,
		ChatURL:   cfg.Upstream.ChatURL,
		ChatModel: cfg.Upstream.ChatModel,
		ImageURL:  cfg.Upstream.ImageURL,
		ImageSize: cfg.Upstream.ImageSize,
		Timeout:   cfg.Upstream.Timeout,
	}, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, services.NewBcryptHasher(cfg.Auth.BcryptCost), policy, logger.Logger)
	chatService := services.NewChatService(aiClient, logger.Logger)
	imageService := services.NewImageService(aiClient, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	proxyHandler := handlers.NewProxyHandler(chatService, imageService, logger.Logger)

	r := newRouter(cfg, authHandler, proxyHandler, logger.Logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: proxyTimeout(cfg) + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newRouter builds the chi router with the shared middleware chain.
// Auth routes get REQUEST_TIMEOUT; proxy routes get proxyTimeout so the
// upstream client timeout fires before the request deadline.
func newRouter(cfg *config.Config, authHandler *handlers.AuthHandler, proxyHandler *handlers.ProxyHandler, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger))
	r.Use(middlewares.RecoveryMiddleware(logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
		authHandler.RegisterRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(proxyTimeout(cfg)))
		proxyHandler.RegisterRoutes(r)
	})

	return r
}

// proxyTimeout is the request deadline of the chat and image routes
func proxyTimeout(cfg *config.Config) time.Duration {
	return max(cfg.Server.RequestTimeout, cfg.Upstream.Timeout+upstreamGrace)
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

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
