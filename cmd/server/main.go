package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"library_system/internal/api"        // Custom package for API handlers
	"library_system/internal/config"     // Custom package for configuration
	"library_system/internal/loan"       // Loan lifecycle service
	"library_system/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Loan lifecycle service shared by user and admin routes
	loanSvc := loan.NewService(db)

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db))          // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Public catalog routes
	r.GET("/books", api.ListBooksHandler(db, redisClient)) // Browse catalog
	r.GET("/books/:id", api.GetBookHandler(db, redisClient))

	// Member routes (protected by JWT, suspended accounts rejected)
	memberGroup := r.Group("/")
	memberGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.ActiveMemberMiddleware(db))
	memberGroup.GET("/profile", api.GetProfileHandler())                               // Own profile
	memberGroup.PUT("/profile", api.UpdateProfileHandler(db))                          // Edit own profile
	memberGroup.POST("/loans", api.CreateLoanHandler(loanSvc))                         // Request a loan
	memberGroup.GET("/loans", api.ListLoansHandler(db))                                // Own loans
	memberGroup.DELETE("/loans/:id", api.CancelLoanHandler(loanSvc))                   // Cancel pending request
	memberGroup.POST("/loans/:id/return", api.ReturnLoanHandler(loanSvc, redisClient)) // Return a borrowed copy
	memberGroup.GET("/wishlist", api.ListWishlistHandler(db))                          // Own wishlist
	memberGroup.POST("/wishlist", api.AddWishlistHandler(db))                          // Add to wishlist
	memberGroup.DELETE("/wishlist/:id", api.RemoveWishlistHandler(db))                 // Remove from wishlist

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.POST("/books", api.CreateBookHandler(db, redisClient))                    // Add catalog entry
	adminGroup.PUT("/books/:id", api.UpdateBookHandler(db, redisClient))                 // Edit catalog entry
	adminGroup.DELETE("/books/:id", api.DeleteBookHandler(db, redisClient))              // Remove catalog entry
	adminGroup.GET("/loans", api.ListAllLoansHandler(db))                                // All loans
	adminGroup.PATCH("/loans/:id", api.AdminUpdateLoanHandler(loanSvc, db, redisClient)) // Approve/reject/return/late
	adminGroup.GET("/members", api.ListMembersHandler(db, redisClient))                  // List members
	adminGroup.PATCH("/members/:id", api.UpdateMemberHandler(db, redisClient))           // Change role/status
	adminGroup.GET("/reports/loans", api.LoanReportHandler(db, redisClient))             // Loan summary
	adminGroup.GET("/reports/popular", api.PopularBooksHandler(db, redisClient))         // Most borrowed books
	adminGroup.GET("/reports/overdue", api.OverdueLoansHandler(loanSvc))                 // Derived overdue listing

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
