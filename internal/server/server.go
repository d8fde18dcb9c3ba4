package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/metrics"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, rdb *redis.Client, reg *prometheus.Registry) *Server {
	serverMetrics := metrics.NewServerMetrics(reg)

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware(serverMetrics))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	router.Get("/health", healthHandler(db, rdb))
	router.Handle("/metrics", metrics.Handler(reg))

	sqlDB := db.DB()
	userRepo := repository.NewUserRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	faqRepo := repository.NewFAQRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)

	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	faqService := service.NewFAQService(faqRepo)
	orderService := service.NewOrderService(orderRepo, cfg.Kafka.OrderTopic, serverMetrics, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	// Stripe retries webhooks on its own schedule, so it stays outside the limiter
	transport.NewWebhookHandler(payment.NewWebhookVerifier(cfg.Stripe.WebhookSecret), orderService, logger).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
			Exempt:            custommiddleware.HasValidToken(cfg.JWT.Secret),
		}, logger))

		transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(r)
		transport.NewFAQHandler(faqService, logger).RegisterRoutes(r)
		transport.NewUserHandler(userService, logger).RegisterRoutes(r)
		transport.NewOrderHandler(orderService, logger).RegisterRoutes(r, authMiddleware)
	})

	return &Server{
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
		redis:  rdb,
	}
}

// healthHandler reports 503 when the database or Redis is unreachable
func healthHandler(db database.Service, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbHealth := db.Health(ctx)
		redisStatus := "up"
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}

		status, code := "ok", http.StatusOK
		if dbHealth["status"] != "up" || redisStatus != "up" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		custommiddleware.RespondWithJSON(w, code, map[string]interface{}{
			"status":   status,
			"database": dbHealth,
			"redis":    redisStatus,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")
	return multierr.Combine(s.db.Close(), s.redis.Close())
}
