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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/metrics"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
	"storefront-service/internal/storage"
)

// @title Storefront API
// @version 1.0.0
// @description Bilingual (English/Arabic) storefront and admin back-office API

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Redis backs the catalog caches; the service degrades to the database without it
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	var eventsPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
			eventsPublisher = nil
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}

	var images services.ImageUploader
	if cfg.StorageEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.NewImageStore(ctx, cfg)
		cancel()
		if err != nil {
			log.Printf("WARNING: Failed to initialize image storage: %v (uploads disabled)", err)
		} else {
			images = store
			log.Println("✓ Image storage initialized")
		}
	} else {
		log.Println("Storage credentials not set, image uploads disabled")
	}

	m := metrics.New("storefront", "storefront_service")
	log.Println("✓ Prometheus metrics initialized")

	// Repositories
	productsRepo := repository.NewProductsRepository(db, redisClient)
	categoriesRepo := repository.NewCategoriesRepository(db, redisClient)
	contentRepo := repository.NewContentRepository(db, redisClient)
	cartRepo := repository.NewCartRepository(db)
	ordersRepo := repository.NewOrdersRepository(db)
	usersRepo := repository.NewUsersRepository(db)

	// Services
	settingsService := services.NewSettingsService(contentRepo, cfg)
	contentService := services.NewContentService(contentRepo)
	catalogService := services.NewCatalogService(productsRepo, categoriesRepo, contentRepo,
		cfg.DirectoryCacheTTL, cfg.CatalogQueryTimeout, m, logger)
	cartService := services.NewCartService(cartRepo, productsRepo, cfg.CartWorkers, m, logger)
	checkoutService := services.NewCheckoutService(cartRepo, cartService, ordersRepo, productsRepo, contentRepo, usersRepo,
		settingsService, eventsPublisher, logger)
	orderService := services.NewOrderService(ordersRepo, productsRepo, settingsService,
		eventsPublisher, cfg.LowStockLimit, logger)
	adminCatalogService := services.NewAdminCatalogService(productsRepo, categoriesRepo, images,
		catalogService, eventsPublisher, logger)
	accountService := services.NewAccountService(usersRepo, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler().
		WithCheck("database", false, handlers.DatabaseCheck(db)).
		WithCheck("redis", true, handlers.RedisCheck(redisClient))
	storefrontHandler := handlers.NewStorefrontHandler(catalogService, contentService, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)
	accountHandler := handlers.NewAccountHandler(accountService, orderService, logger)
	adminCatalogHandler := handlers.NewAdminCatalogHandler(adminCatalogService, logger)
	adminOrdersHandler := handlers.NewAdminOrdersHandler(orderService, logger)
	adminContentHandler := handlers.NewAdminContentHandler(contentService, settingsService, accountService, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(m.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Locale(models.Locale(cfg.DefaultLocale)))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", m.Handler())

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, 10*time.Minute)
	requireAuth := middleware.RequireAuth(cfg.JWTSecret, cfg.JWTIssuer)

	api := router.Group("/api/v1")

	// =============================================================================
	// PUBLIC STOREFRONT ENDPOINTS
	// =============================================================================
	storefront := api.Group("/storefront")
	storefront.Use(middleware.RateLimit(limiter))
	{
		storefront.GET("/products", storefrontHandler.BrowseProducts)
		storefront.GET("/products/:slug", storefrontHandler.GetProduct)
		storefront.GET("/categories", storefrontHandler.ListCategories)
		storefront.GET("/filters", storefrontHandler.FilterMetadata)
		storefront.GET("/home", storefrontHandler.Home)
		storefront.GET("/banners", storefrontHandler.ActiveBanners)
	}

	// =============================================================================
	// CUSTOMER ENDPOINTS (signed-in shoppers)
	// =============================================================================
	customer := api.Group("")
	customer.Use(requireAuth, middleware.RateLimit(limiter))
	{
		cart := customer.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:productId", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
		}

		wishlist := customer.Group("/wishlist")
		{
			wishlist.GET("", cartHandler.GetWishlist)
			wishlist.POST("/move-to-cart", cartHandler.MoveWishlistToCart)
			wishlist.POST("/:productId", cartHandler.ToggleWishlist)
		}

		checkout := customer.Group("/checkout")
		{
			checkout.POST("/quote", checkoutHandler.Quote)
			checkout.POST("", checkoutHandler.PlaceOrder)
		}

		account := customer.Group("/account")
		{
			account.GET("/profile", accountHandler.GetProfile)
			account.PUT("/profile", accountHandler.UpdateProfile)
			account.GET("/addresses", accountHandler.ListAddresses)
			account.POST("/addresses", accountHandler.CreateAddress)
			account.PUT("/addresses/:id", accountHandler.UpdateAddress)
			account.DELETE("/addresses/:id", accountHandler.DeleteAddress)
			account.GET("/orders", accountHandler.ListOrders)
			account.GET("/orders/:id", accountHandler.GetOrder)
			account.GET("/orders/:id/invoice", accountHandler.GetOrderInvoice)
		}
	}

	// =============================================================================
	// ADMIN BACK-OFFICE ENDPOINTS
	// =============================================================================
	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin(accountService, logger))
	{
		products := admin.Group("/products")
		{
			products.GET("", adminCatalogHandler.ListProducts)
			products.GET("/export", adminCatalogHandler.ExportProducts)
			products.POST("/import", adminCatalogHandler.ImportProducts)
			products.POST("/bulk/status", adminCatalogHandler.BulkUpdateStatus)
			products.POST("", adminCatalogHandler.CreateProduct)
			products.GET("/:id", adminCatalogHandler.GetProduct)
			products.PUT("/:id", adminCatalogHandler.UpdateProduct)
			products.DELETE("/:id", adminCatalogHandler.DeleteProduct)
			products.POST("/:id/image", adminCatalogHandler.UploadProductImage)
		}

		categories := admin.Group("/categories")
		{
			categories.GET("", adminCatalogHandler.ListCategories)
			categories.POST("", adminCatalogHandler.CreateCategory)
			categories.PUT("/:id", adminCatalogHandler.UpdateCategory)
			categories.DELETE("/:id", adminCatalogHandler.DeleteCategory)
		}

		admin.POST("/uploads", adminCatalogHandler.UploadImage)

		orders := admin.Group("/orders")
		{
			orders.GET("", adminOrdersHandler.ListOrders)
			orders.GET("/stats", adminOrdersHandler.Stats)
			orders.GET("/export", adminOrdersHandler.Export)
			orders.GET("/:id", adminOrdersHandler.GetOrder)
			orders.PUT("/:id/status", adminOrdersHandler.UpdateStatus)
			orders.GET("/:id/invoice", adminOrdersHandler.Invoice)
		}

		banners := admin.Group("/banners")
		{
			banners.GET("", adminContentHandler.ListBanners)
			banners.POST("", adminContentHandler.CreateBanner)
			banners.PUT("/:id", adminContentHandler.UpdateBanner)
			banners.DELETE("/:id", adminContentHandler.DeleteBanner)
		}

		promotions := admin.Group("/promotions")
		{
			promotions.GET("", adminContentHandler.ListPromotions)
			promotions.POST("", adminContentHandler.CreatePromotion)
			promotions.PUT("/:id", adminContentHandler.UpdatePromotion)
			promotions.DELETE("/:id", adminContentHandler.DeletePromotion)
		}

		admin.GET("/settings", adminContentHandler.GetSettings)
		admin.PUT("/settings", adminContentHandler.UpdateSettings)

		admin.GET("/users", adminContentHandler.ListUsers)
		admin.PUT("/users/:id/role", adminContentHandler.UpdateUserRole)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Storefront service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down storefront-service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Pending cart commands drain before their connections go away
	cartService.Close()
	limiter.Stop()
	eventsPublisher.Close()
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Storefront service stopped")
}
