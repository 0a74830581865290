package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"lunchline/internal/config"
	custommiddleware "lunchline/internal/middleware"
	"lunchline/internal/repository"
	"lunchline/internal/service"
	"lunchline/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the persistence interfaces the services run on. Both the
// PostgreSQL and the JSON file backend produce one of these.
type Stores struct {
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Sales    repository.SalesRepository
	Staff    repository.StaffRepository
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer wires stores, services and handlers into an HTTP server. db is
// nil when the JSON file backend is active.
func NewServer(cfg *config.Config, logger *zap.Logger, stores Stores, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize services
	catalogService := service.NewCatalogService(stores.Products)
	orderService := service.NewOrderService(stores.Orders, stores.Products)
	salesService := service.NewSalesService(stores.Sales, stores.Products)
	reportService := service.NewReportService(stores.Orders)
	authService := service.NewAuthService(stores.Staff, cfg.JWT.Secret)

	// Initialize handlers
	orderHandler := transport.NewOrderHandler(orderService, catalogService, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	salesHandler := transport.NewSalesHandler(salesService, cfg.Forecast.Horizon, logger)
	reportHandler := transport.NewReportHandler(reportService, logger)
	staffHandler := transport.NewStaffHandler(authService, logger)

	// Staff endpoints require a valid token carrying the staff role.
	authMiddleware := custommiddleware.StaffAuthMiddleware(cfg.JWT.Secret, logger)
	roleMiddleware := custommiddleware.RequireStaff(logger)
	staffAuth := func(next http.Handler) http.Handler {
		return authMiddleware(roleMiddleware(next))
	}

	// Order submission is throttled per client.
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.Orders.RateLimitPerMinute,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:orders",
	}, logger)

	// Register routes
	orderHandler.RegisterRoutes(router, staffAuth, rateLimit)
	productHandler.RegisterRoutes(router, staffAuth)
	salesHandler.RegisterRoutes(router, staffAuth)
	reportHandler.RegisterRoutes(router, staffAuth)
	staffHandler.RegisterRoutes(router, staffAuth)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
