package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/payhuk02/payhula-sub017/internal/clients"
	"github.com/payhuk02/payhula-sub017/internal/config"
	"github.com/payhuk02/payhula-sub017/internal/events"
	"github.com/payhuk02/payhula-sub017/internal/gateway"
	"github.com/payhuk02/payhula-sub017/internal/handlers"
	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
	"github.com/payhuk02/payhula-sub017/internal/services"
	"github.com/payhuk02/payhula-sub017/internal/tracing"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := tracing.Init(context.Background(), "payhula-commerce", cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
		shutdownTracing = func(context.Context) error { return nil }
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	if err := migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, caching disabled")
		} else {
			redisClient = redis.NewClient(opts)
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				logger.WithError(err).Warn("Redis unreachable, caching disabled")
				redisClient = nil
			}
		}
	}

	publisher := events.NewPublisher(cfg.NATSUrl, logger)

	// Repositories
	orderRepo := repository.NewOrderRepository(db, redisClient)
	paymentRepo := repository.NewPaymentRepository(db, redisClient, logger)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	giftCardRepo := repository.NewGiftCardRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	// Clients and gateways
	notificationClient := clients.NewNotificationClient(cfg.NotificationServiceURL, logger)
	webhookClient := clients.NewWebhookClient()
	gatewayFactory := gateway.NewFactory(cfg)

	// Services
	dispatcher := services.NewWebhookDispatcher(webhookRepo, webhookClient, logger)
	notifier := services.NewNotificationService(alertRepo, customerRepo, notificationClient, logger)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, publisher, logger)
	productService := services.NewProductService(productRepo, notifier, dispatcher, logger)
	importService := services.NewImportService(productService, logger)
	receiptService := services.NewReceiptService(customerRepo, logger)
	orderService := services.NewOrderService(
		orderRepo, productRepo, customerRepo, giftCardRepo,
		paymentService, gatewayFactory, dispatcher, notifier, publisher, logger,
	)

	// Handlers
	orderHandler := handlers.NewOrderHandler(orderService, receiptService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	productHandler := handlers.NewProductHandler(productService, importService, logger)
	customerHandler := handlers.NewCustomerHandler(customerRepo, alertRepo, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(paymentService, orderRepo, logger)
	webhookHandler := handlers.NewWebhookHandler(webhookRepo, paymentService, gatewayFactory, logger)
	exportHandler := handlers.NewExportHandler(orderRepo, logger)
	healthHandler := handlers.NewHealthHandler(db, orderRepo)

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())
	if cfg.OTLPEndpoint != "" {
		router.Use(tracing.GinMiddleware())
	}

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Gateway callbacks authenticate by signature, not API key
	router.POST("/webhooks/payments/:provider", webhookHandler.PaymentCallback)

	api := router.Group("/api/v1")
	api.Use(middleware.APIKeyAuth(apiKeyRepo, logger))
	api.Use(middleware.RequireStoreID())
	{
		orders := api.Group("/orders", middleware.RequireScope("orders"))
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/number/:number", orderHandler.GetOrderByNumber)
			orders.PATCH("/:id/fulfillment", orderHandler.UpdateFulfillment)
			orders.GET("/:id/receipt", orderHandler.GetReceipt)
		}

		payments := api.Group("/payments", middleware.RequireScope("payments"))
		{
			payments.GET("", paymentHandler.ListPayments)
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.POST("/:id/confirm-delivery", paymentHandler.ConfirmDelivery)
			payments.POST("/:id/release", paymentHandler.ReleasePayment)
			payments.POST("/:id/disputes", paymentHandler.OpenDispute)
		}

		products := api.Group("/products", middleware.RequireScope("products"))
		{
			products.POST("", productHandler.CreateProduct)
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.PATCH("/:id/price", productHandler.UpdatePrice)
			products.PATCH("/:id/stock", productHandler.UpdateStock)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		customers := api.Group("/customers", middleware.RequireScope("customers"))
		{
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PATCH("/:id/preferences", customerHandler.UpdatePreferences)
			customers.POST("/:id/price-alerts", customerHandler.CreatePriceAlert)
			customers.POST("/:id/stock-alerts", customerHandler.CreateStockAlert)
		}

		webhooks := api.Group("/webhooks", middleware.RequireScope("webhooks"))
		{
			webhooks.POST("", webhookHandler.CreateEndpoint)
			webhooks.GET("", webhookHandler.ListEndpoints)
			webhooks.DELETE("/:id", webhookHandler.DeleteEndpoint)
		}

		api.GET("/analytics/summary", middleware.RequireScope("analytics"), analyticsHandler.GetSummary)
		api.GET("/export/orders", middleware.RequireScope("orders"), exportHandler.ExportOrders)
		api.POST("/import/products", middleware.RequireScope("products"), productHandler.ImportProducts)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.WithError(err).Warn("Tracer shutdown failed")
	}
	logger.Info("Server stopped")
}

// migrate runs schema migrations and ensures the order number sequence
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderTimeline{},
		&models.Payment{},
		&models.PartialPayment{},
		&models.SecuredPayment{},
		&models.Dispute{},
		&models.GiftCard{},
		&models.PriceAlert{},
		&models.StockAlert{},
		&models.ShipmentNotification{},
		&models.ReturnNotification{},
		&models.APIKey{},
		&models.WebhookEndpoint{},
		&models.WebhookDelivery{},
	); err != nil {
		return err
	}

	return db.Exec("CREATE SEQUENCE IF NOT EXISTS order_number_seq START 1000").Error
}
