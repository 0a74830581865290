package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lunchline/internal/config"
	"lunchline/internal/database"
	"lunchline/internal/domain"
	"lunchline/internal/jsonstore"
	"lunchline/internal/logger"
	"lunchline/internal/repository"
	"lunchline/internal/server"
	"lunchline/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultStaffUsername = "admin"
	defaultStaffPassword = "changeme123"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// ensureDefaultStaff seeds the initial staff account on an empty store. The
// password must be changed on first login.
func ensureDefaultStaff(ctx context.Context, staff repository.StaffRepository, log *zap.Logger) error {
	_, err := staff.FindByUsername(ctx, defaultStaffUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrStaffNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultStaffPassword), service.BcryptCost)
	if err != nil {
		return err
	}

	now := time.Now()
	account := &domain.StaffAccount{
		ID:           uuid.New(),
		Username:     defaultStaffUsername,
		PasswordHash: string(hash),
		Role:         "staff",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := staff.Create(ctx, account); err != nil {
		return err
	}

	log.Warn("Seeded default staff account, change its password immediately",
		zap.String("username", defaultStaffUsername),
	)
	return nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting lunchline API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Store.Backend),
	)

	// Initialize the persistence backend
	var stores server.Stores
	var db *database.Service

	switch cfg.Store.Backend {
	case "jsonfile":
		store, err := jsonstore.Open(cfg.Store.JSONPath)
		if err != nil {
			log.Fatal("Failed to open JSON store", zap.Error(err))
		}
		stores = server.Stores{
			Products: store.Products(),
			Orders:   store.Orders(),
			Sales:    store.Sales(),
			Staff:    store.Staff(),
		}

	case "postgres":
		db, err = database.New(cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}

		health := db.Health()
		log.Info("Database health check", zap.Any("health", health))

		if err := database.Migrate(context.Background(), db.DB(), "migrations", log); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}

		stores = server.Stores{
			Products: repository.NewProductRepository(db.DB()),
			Orders:   repository.NewOrderRepository(db.DB()),
			Sales:    repository.NewSalesRepository(db.DB()),
			Staff:    repository.NewStaffRepository(db.DB()),
		}

	default:
		log.Fatal("Unknown store backend", zap.String("backend", cfg.Store.Backend))
	}

	if err := ensureDefaultStaff(context.Background(), stores.Staff, log); err != nil {
		log.Fatal("Failed to seed staff account", zap.Error(err))
	}

	// Redis backs order rate limiting; an unreachable instance degrades to
	// unthrottled ordering rather than blocking startup.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Create server
	var sqlDB *sql.DB
	if db != nil {
		sqlDB = db.DB()
	}
	srv := server.NewServer(cfg, log, stores, sqlDB, redisClient)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
