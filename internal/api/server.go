package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/printhub/realtime-api/internal/clients"
	"github.com/printhub/realtime-api/internal/config"
	"github.com/printhub/realtime-api/internal/database"
	"github.com/printhub/realtime-api/internal/events"
	"github.com/printhub/realtime-api/internal/realtime"
	"github.com/printhub/realtime-api/internal/repository"
	"github.com/printhub/realtime-api/internal/service"
	"github.com/printhub/realtime-api/pkg/kafka"
	"github.com/printhub/realtime-api/pkg/logger"
	"github.com/printhub/realtime-api/pkg/middleware"
)

type Server struct {
	config        *config.Config
	logger        logger.Logger
	router        *mux.Router
	httpServer    *http.Server
	db            *database.Database
	registry      *realtime.RoomRegistry
	hub           *realtime.Hub
	orderService  *service.OrderService
	chatService   *service.ChatService
	kafkaProducer *kafka.Producer
	rateLimiter   *middleware.RateLimiterMiddleware
}

// NewServer creates a new API server with the given configuration and logger.
func NewServer(cfg *config.Config, logger logger.Logger) *Server {
	r := mux.NewRouter()

	connectCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(connectCtx, cfg, logger.Named("db"))

	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		panic(err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		panic(err)
	}

	orderRepo := repository.NewOrderRepository(db, logger.Named("orders"))
	fileRepo := repository.NewFileRepository(db, logger.Named("files"))
	chatRepo := repository.NewChatRepository(db, logger.Named("chat"))

	registry := realtime.NewRoomRegistry(logger.Named("registry"))
	hub := realtime.NewHub(registry, logger.Named("hub"))

	var verifier service.FileVerifier
	if cfg.Storage.VerifyUploads && cfg.Storage.BaseURL != "" {
		verifier = clients.NewStorageClient(cfg.Storage.BaseURL, logger.Named("storage"))
	}

	var kafkaProducer *kafka.Producer
	var mirror service.EventMirror
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafka.NewProducer(cfg.Kafka.Brokers, logger.Named("kafka"))

		if err != nil {
			logger.Error("Failed to create Kafka producer", "error", err)
			panic(err)
		}

		mirror = events.NewKafkaMirror(kafkaProducer, cfg.Kafka.EventsTopic, logger.Named("mirror"))
	}

	orderService := service.NewOrderService(
		orderRepo,
		fileRepo,
		hub,
		verifier,
		mirror,
		cfg.TxTimeout,
		logger.Named("order-service"),
	)

	chatService := service.NewChatService(
		chatRepo,
		orderRepo,
		hub,
		mirror,
		logger.Named("chat-service"),
	)

	rateLimiter := middleware.NewRateLimiterMiddleware(&middleware.RateLimiterConfig{
		GlobalMaxTokens:   cfg.RateLimit.GlobalMaxTokens,
		GlobalRefillRate:  cfg.RateLimit.GlobalRefillRate,
		IPMaxTokens:       cfg.RateLimit.IPMaxTokens,
		IPRefillRate:      cfg.RateLimit.IPRefillRate,
		TrustForwardedFor: cfg.RateLimit.TrustForwardedFor,
	}, logger.Named("ratelimit"))

	server := &Server{
		config: cfg,
		logger: logger,
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		db:            db,
		registry:      registry,
		hub:           hub,
		orderService:  orderService,
		chatService:   chatService,
		kafkaProducer: kafkaProducer,
		rateLimiter:   rateLimiter,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", "error", err)
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all the routes for the API
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimiter.Middleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	api.HandleFunc("/orders", s.createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", s.getOrderHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/status", s.updateOrderStatusHandler).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}/urgent", s.toggleUrgencyHandler).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}/files", s.addOrderFilesHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/messages", s.sendMessageHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/messages", s.getChatHistoryHandler).Methods(http.MethodGet)
	api.HandleFunc("/shops/{shopId}/orders", s.getShopOrdersHandler).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.websocketHandler)
}

// loggingMiddleware logs each processed request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}
