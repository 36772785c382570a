package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"erpcore/internal/caching"
	"erpcore/internal/handlers"
	"erpcore/internal/jobs"
	"erpcore/internal/middleware"
	"erpcore/internal/repositories"
	"erpcore/internal/services"
	"erpcore/internal/storage"
	"erpcore/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}
	jwtTTL := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL_HOURS"); ttlStr != "" {
		if hours, err := strconv.Atoi(ttlStr); err == nil && hours > 0 {
			jwtTTL = time.Duration(hours) * time.Hour
		}
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	cacheSvc, err := caching.NewCacheService(redisAddr, redisPassword, redisDB, 5*time.Minute)
	if err != nil {
		log.Printf("WARNING: Redis unavailable, running without cache: %v", err)
		cacheSvc = nil
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "erpcore-assets"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	logoStorage, err := storage.NewLogoStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Printf("WARNING: MinIO unavailable, logo uploads disabled: %v", err)
		logoStorage = nil
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	tokenRepo := repositories.NewTokenRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool)
	sequenceRepo := repositories.NewSequenceRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	movementRepo := repositories.NewStockMovementRepo(pool)
	orderRepo := repositories.NewSalesOrderRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)

	// Create services
	authSvc := services.NewAuthService(userRepo, tokenRepo, jwtSecret, jwtTTL)
	tenantSvc := services.NewTenantService(tenantRepo, membershipRepo, logoStorage)
	invitationSvc := services.NewInvitationService(invitationRepo, userRepo, tenantSvc)
	customerSvc := services.NewCustomerService(customerRepo, sequenceRepo, cacheSvc)
	categorySvc := services.NewCategoryService(categoryRepo)
	productSvc := services.NewProductService(productRepo, movementRepo, cacheSvc)
	orderSvc := services.NewSalesOrderService(orderRepo, invoiceRepo, productRepo, customerRepo, sequenceRepo)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, paymentRepo, productRepo, customerRepo, sequenceRepo)
	paymentSvc := services.NewPaymentService(paymentRepo, invoiceRepo, sequenceRepo)

	// Create handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	tenantHandler := handlers.NewTenantHandler(tenantSvc, invitationSvc)
	customerHandler := handlers.NewCustomerHandler(customerSvc)
	productHandler := handlers.NewProductHandler(productSvc, categorySvc)
	orderHandler := handlers.NewSalesOrderHandler(orderSvc)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceSvc)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc)

	// Background jobs
	scheduler, err := jobs.NewScheduler(invoiceRepo)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health and docs (no auth required)
	e.GET("/health", handlers.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	// Protected routes: authenticated, with tenant resolution
	protected := v1.Group("")
	protected.Use(middleware.JWT(jwtSecret, authSvc))
	protected.Use(middleware.TenantResolver(tenantSvc))

	// Organization routes that work without an affiliation
	protected.POST("/organizations", tenantHandler.Create)
	protected.GET("/organizations", tenantHandler.List)
	protected.POST("/invitations/accept", tenantHandler.AcceptInvitation)

	// Tenant-scoped routes
	scoped := protected.Group("", middleware.RequireTenant)

	scoped.GET("/organizations/current", tenantHandler.Current)
	scoped.PUT("/organizations/current", tenantHandler.Update, middleware.RequireAdmin)
	scoped.GET("/organizations/members", tenantHandler.Members)
	scoped.GET("/organizations/invitations", tenantHandler.Invitations)
	scoped.POST("/organizations/invitations", tenantHandler.Invite)
	scoped.POST("/organizations/logo", tenantHandler.UploadLogo, middleware.RequireAdmin)
	scoped.GET("/organizations/logo", tenantHandler.LogoURL)

	scoped.GET("/customers", customerHandler.List)
	scoped.POST("/customers", customerHandler.Create)
	scoped.GET("/customers/:id", customerHandler.Get)
	scoped.PUT("/customers/:id", customerHandler.Update)
	scoped.DELETE("/customers/:id", customerHandler.Delete)

	scoped.GET("/categories", productHandler.ListCategories)
	scoped.POST("/categories", productHandler.CreateCategory)
	scoped.PUT("/categories/:id", productHandler.UpdateCategory)
	scoped.DELETE("/categories/:id", productHandler.DeleteCategory)

	scoped.GET("/products", productHandler.List)
	scoped.POST("/products", productHandler.Create)
	scoped.GET("/products/low-stock", productHandler.LowStock)
	scoped.GET("/products/:id", productHandler.Get)
	scoped.PUT("/products/:id", productHandler.Update)
	scoped.DELETE("/products/:id", productHandler.Delete)
	scoped.POST("/products/:id/adjust-stock", productHandler.AdjustStock)
	scoped.GET("/products/:id/movements", productHandler.Movements)

	scoped.GET("/sales-orders", orderHandler.List)
	scoped.POST("/sales-orders", orderHandler.Create)
	scoped.GET("/sales-orders/stats", orderHandler.Stats)
	scoped.GET("/sales-orders/:id", orderHandler.Get)
	scoped.PUT("/sales-orders/:id", orderHandler.Update)
	scoped.DELETE("/sales-orders/:id", orderHandler.Delete)
	scoped.PUT("/sales-orders/:id/items", orderHandler.ReplaceItems)
	scoped.POST("/sales-orders/:id/confirm", orderHandler.Confirm)
	scoped.POST("/sales-orders/:id/cancel", orderHandler.Cancel)
	scoped.POST("/sales-orders/:id/create-invoice", orderHandler.CreateInvoice)

	scoped.GET("/invoices", invoiceHandler.List)
	scoped.POST("/invoices", invoiceHandler.Create)
	scoped.GET("/invoices/:id", invoiceHandler.Get)
	scoped.PUT("/invoices/:id", invoiceHandler.Update)
	scoped.DELETE("/invoices/:id", invoiceHandler.Delete)
	scoped.PUT("/invoices/:id/items", invoiceHandler.ReplaceItems)
	scoped.POST("/invoices/:id/send", invoiceHandler.Send)
	scoped.POST("/invoices/:id/mark-paid", invoiceHandler.MarkPaid)
	scoped.POST("/invoices/:id/cancel", invoiceHandler.Cancel)
	scoped.GET("/invoices/:id/payments", invoiceHandler.Payments)

	scoped.GET("/payments", paymentHandler.List)
	scoped.POST("/payments", paymentHandler.Create)
	scoped.GET("/payments/:id", paymentHandler.Get)
	scoped.PUT("/payments/:id", paymentHandler.Update)
	scoped.DELETE("/payments/:id", paymentHandler.Delete)
	scoped.POST("/payments/:id/process", paymentHandler.Process)
	scoped.POST("/payments/:id/fail", paymentHandler.Fail)
	scoped.POST("/payments/:id/cancel", paymentHandler.Cancel)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("erpcore server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
