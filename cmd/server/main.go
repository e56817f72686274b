package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"pharmaplus_echo/internal/handlers"
	"pharmaplus_echo/internal/middleware"
	"pharmaplus_echo/internal/models"
	"pharmaplus_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	authClient, err := services.InitFirebase()
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis (optional; dashboard falls back to direct computation)
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	} else {
		log.Println("Warning: REDIS_URL not set, dashboard caching disabled")
	}

	// Services
	emails := services.NewEmailService()
	location := services.NewLocationService()
	orderService := services.NewOrderService(db, emails)
	paymentService := services.NewPaymentService(orderService)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = middleware.CustomErrorHandler

	// Middleware
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	// Static file serving for uploaded images
	e.Static("/uploads", "uploads")

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, location)
	pharmacyHandler := handlers.NewPharmacyHandler(db, location)
	medicineHandler := handlers.NewMedicineHandler(db)
	orderHandler := handlers.NewOrderHandler(db, orderService, paymentService, cache)
	dashboardHandler := handlers.NewDashboardHandler(db, cache)

	api := e.Group("/api")

	// Public routes
	api.POST("/users/register", userHandler.Register)
	api.POST("/orders/payment/callback", orderHandler.PaymentCallback)
	api.GET("/medicines/search", medicineHandler.Search)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(authClient, db))

	// Users
	protected.GET("/users", userHandler.List)
	protected.GET("/users/profile", userHandler.Profile)
	protected.PATCH("/users/profile", userHandler.UpdateProfile)
	protected.GET("/users/:id", userHandler.Get)
	protected.PATCH("/users/:id", userHandler.Update)
	protected.PATCH("/users/:id/preferences", userHandler.UpdatePreferences)
	protected.DELETE("/users/:id", userHandler.Delete)

	// Pharmacies
	protected.POST("/pharmacies", pharmacyHandler.Create)
	protected.GET("/pharmacies", pharmacyHandler.List)
	protected.GET("/pharmacies/:id", pharmacyHandler.Get)
	protected.PATCH("/pharmacies/:id", pharmacyHandler.Update)
	protected.DELETE("/pharmacies/:id", pharmacyHandler.Delete)
	protected.GET("/pharmacies/:id/medicines", pharmacyHandler.Medicines)
	protected.GET("/pharmacies/:id/dashboard", pharmacyHandler.Dashboard)
	protected.GET("/pharmacies/:id/analytics/top-medicines", pharmacyHandler.TopMedicines)
	protected.GET("/pharmacies/:id/analytics/sales-by-category", pharmacyHandler.SalesByCategory)
	protected.GET("/pharmacies/:id/analytics/low-stock", pharmacyHandler.LowStockAlerts)
	protected.GET("/pharmacies/:id/analytics/customers", pharmacyHandler.CustomerAnalytics)

	// Medicines
	protected.POST("/medicines", medicineHandler.Create)
	protected.GET("/medicines", medicineHandler.List)
	protected.GET("/medicines/low-stock", medicineHandler.LowStock)
	protected.GET("/medicines/low-stock/:pharmacyId", medicineHandler.LowStockByPharmacy)
	protected.GET("/medicines/pharmacy/:pharmacyId", medicineHandler.ByPharmacy)
	protected.GET("/medicines/:id", medicineHandler.Get)
	protected.PATCH("/medicines/:id", medicineHandler.Update)
	protected.DELETE("/medicines/:id", medicineHandler.Delete)

	// Orders
	protected.POST("/orders", orderHandler.Create)
	protected.GET("/orders", orderHandler.List)
	protected.GET("/orders/user/:userId", orderHandler.ByUser)
	protected.GET("/orders/pharmacy/:pharmacyId", orderHandler.ByPharmacy)
	protected.GET("/orders/:id", orderHandler.Get)
	protected.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	protected.DELETE("/orders/:id", orderHandler.Delete)
	protected.POST("/orders/:id/pay", orderHandler.Pay)

	// Platform dashboard (superadmin only)
	protected.GET("/dashboard", dashboardHandler.Get,
		middleware.RequireRole(models.RoleSuperadmin))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
