package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealerhub-gin/internal/assign"
	"dealerhub-gin/internal/config"
	"dealerhub-gin/internal/database"
	"dealerhub-gin/internal/gateway"
	"dealerhub-gin/internal/handlers"
	"dealerhub-gin/internal/middleware"
	"dealerhub-gin/internal/realtime"
	"dealerhub-gin/internal/repositories"
	"dealerhub-gin/internal/services"
	"dealerhub-gin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// =========================================================================
	// Load configuration
	// =========================================================================
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Logger
	// =========================================================================
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// =========================================================================
	// Database
	// =========================================================================
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Auto migrate in development mode
	if cfg.App.IsDevelopment() {
		if err := database.AutoMigrate(db); err != nil {
			log.Warn("auto migrate failed", zap.Error(err))
		} else {
			log.Info("database auto migration completed")
		}
	}

	// =========================================================================
	// Repositories
	// =========================================================================
	instanceRepo := repositories.NewInstanceRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	roundRobinRepo := repositories.NewRoundRobinRepository(db)
	negotiationRepo := repositories.NewNegotiationRepository(db)
	assignmentRepo := repositories.NewLeadAssignmentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	interactionRepo := repositories.NewInteractionLogRepository(db)

	log.Info("repositories initialized")

	// =========================================================================
	// Gateway client
	// =========================================================================
	gatewayClient := gateway.NewClient(&cfg.Gateway, log)
	log.Info("gateway client initialized", zap.String("base_url", cfg.Gateway.BaseURL))

	// =========================================================================
	// Round-robin assigner
	// =========================================================================
	engine := assign.NewEngine(log)
	distributor := assign.NewDistributor(roundRobinRepo, engine, log)

	log.Info("round-robin assigner initialized")

	// =========================================================================
	// Realtime Publisher (Centrifugo)
	// =========================================================================
	var publisher realtime.Publisher
	if cfg.Centrifugo.URL != "" && cfg.Centrifugo.APIKey != "" {
		publisher = realtime.NewCentrifugoClient(cfg.Centrifugo.URL, cfg.Centrifugo.APIKey, log)
		log.Info("centrifugo publisher initialized", zap.String("url", cfg.Centrifugo.URL))
	} else {
		publisher = realtime.NewNoopPublisher()
		log.Warn("centrifugo not configured, using noop publisher")
	}

	// =========================================================================
	// Services
	// =========================================================================
	processor := services.NewProcessor(
		instanceRepo,
		contactRepo,
		leadRepo,
		messageRepo,
		negotiationRepo,
		assignmentRepo,
		notificationRepo,
		interactionRepo,
		distributor,
		publisher,
		cfg.Gateway.DefaultCountryCode,
		log,
	)
	instanceService := services.NewInstanceService(instanceRepo, gatewayClient, cfg.Gateway.WebhookBaseURL, log)
	roundRobinService := services.NewRoundRobinService(roundRobinRepo, log)
	chatService := services.NewChatService(contactRepo, messageRepo, leadRepo, notificationRepo, log)

	log.Info("services initialized")

	// =========================================================================
	// Handlers
	// =========================================================================
	webhookHandler := handlers.NewWebhookHandler(processor, log)
	instanceHandler := handlers.NewInstanceHandler(instanceService, log)
	roundRobinHandler := handlers.NewRoundRobinHandler(roundRobinService, log)
	chatHandler := handlers.NewChatHandler(chatService, log)

	log.Info("handlers initialized")

	// =========================================================================
	// Gin Router
	// =========================================================================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))
	router.Use(middleware.CORS([]string{"*"}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		overall := "healthy"
		dbStatus := "up"
		httpStatus := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			overall = "degraded"
			dbStatus = "down"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":   overall,
			"service":  cfg.App.Name,
			"version":  "1.0.0",
			"database": dbStatus,
		})
	})

	// =========================================================================
	// API Routes
	// =========================================================================
	api := router.Group("/api/v1")
	{
		// Ping endpoint (public)
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// Webhook routes (public, called by the messaging gateway)
		webhookHandler.RegisterRoutes(api)

		// CRM routes
		instanceHandler.RegisterRoutes(api)
		roundRobinHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
	}

	log.Info("routes registered",
		zap.Strings("endpoints", []string{
			"/api/v1/webhook/whatsapp",
			"/api/v1/instances",
			"/api/v1/round-robin",
			"/api/v1/contacts",
			"/api/v1/leads",
		}),
	)

	// =========================================================================
	// HTTP Server with graceful shutdown
	// =========================================================================
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
