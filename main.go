package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/marketplace_backend/config"
	"github.com/HSouheill/marketplace_backend/controllers"
	"github.com/HSouheill/marketplace_backend/middleware"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/routes"
	"github.com/HSouheill/marketplace_backend/services"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/HSouheill/marketplace_backend/websocket"
)

const (
	categoryTreeTTL = 10 * time.Minute
	eventBufferSize = 256
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}()

	redisClient := config.ConnectRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	firebaseApp, err := config.InitFirebase(ctx, cfg)
	if err != nil {
		log.Printf("Warning: Firebase disabled: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	wishlistRepo := repositories.NewWishlistRepository(db)
	quoteRepo := repositories.NewQuoteRepository(db)
	promotionRepo := repositories.NewPromotionRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	vendorRepo := repositories.NewVendorRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Realtime and push delivery
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	var push services.PushSender
	if p := services.NewPushService(firebaseApp); p != nil {
		push = p
	}

	var events services.EventPublisher = services.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := services.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic, eventBufferSize)
		kafkaPublisher.Start(ctx)
		events = kafkaPublisher
		log.Printf("Publishing order events to Kafka topic %s", cfg.KafkaOrderTopic)
	}
	defer events.Close()

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	imageStore := utils.NewImageStore(cfg.UploadDir, "/uploads")

	// Services
	categoryService := services.NewCategoryService(categoryRepo, services.NewTreeCache(redisClient, categoryTreeTTL), imageStore)
	productService := services.NewProductService(productRepo, categoryRepo, brandRepo, imageStore)
	brandService := services.NewBrandService(brandRepo, productRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)
	promotionService := services.NewPromotionService(promotionRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, wsHub, push)
	reviewService := services.NewReviewService(reviewRepo, productRepo, orderRepo, notificationService)
	orderService := services.NewOrderService(orderRepo, productRepo, promotionService, notificationService, events)
	paymentService := services.NewPaymentService(orderRepo, userRepo, orderService,
		services.PaymentConfig{
			CallbackURL:           cfg.FrontendURL + "/checkout/callback",
			PaystackSecret:        cfg.Paystack.SecretKey,
			FlutterwaveSecretHash: cfg.Flutterwave.SecretHash,
		},
		services.NewPaystackGateway(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey),
		services.NewFlutterwaveGateway(cfg.Flutterwave.BaseURL, cfg.Flutterwave.SecretKey),
	)
	mailer := services.NewEmailService(cfg.SMTP)
	vendorService := services.NewVendorService(vendorRepo, userRepo, mailer, cfg.FrontendURL)
	quoteService := services.NewQuoteService(quoteRepo, productRepo, mailer)
	commissionService := services.NewCommissionService(productRepo, orderRepo, vendorRepo, cfg.CommissionRate)
	authService := services.NewAuthService(userRepo, tokens)
	dashboardService := services.NewDashboardService(orderRepo, productRepo, userRepo, vendorRepo)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Run(ctx)

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORS(cfg.FrontendURL, cfg.CORSAllowedOrigins))
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		AllowedDomains: []string{cfg.FrontendURL},
		HSTS:           cfg.Env == "production",
	}))
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.Static("/uploads", imageStore.Dir())

	routes.SetupRoutes(e, tokens, routes.Handlers{
		Auth:          controllers.NewAuthController(authService),
		Categories:    controllers.NewCategoryController(categoryService),
		Products:      controllers.NewProductController(productService),
		Brands:        controllers.NewBrandController(brandService),
		Reviews:       controllers.NewReviewController(reviewService),
		Wishlist:      controllers.NewWishlistController(wishlistService),
		Quotes:        controllers.NewQuoteController(quoteService),
		Promotions:    controllers.NewPromotionController(promotionService),
		Orders:        controllers.NewOrderController(orderService),
		Payments:      controllers.NewPaymentController(paymentService),
		Vendors:       controllers.NewVendorController(vendorService, commissionService, authService),
		Notifications: controllers.NewNotificationController(notificationService),
		Admin:         controllers.NewAdminController(dashboardService),
		WebSocket:     websocket.NewHandler(wsHub, tokens.UserIDFromToken),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
