package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	"pagai-backend/config"
	"pagai-backend/database"
	"pagai-backend/handlers"
	"pagai-backend/middleware"
	"pagai-backend/services"
	"pagai-backend/store"
)

func main() {
	// Load configuration
	config.Load()

	// Connect audit database and cache (both optional)
	database.Connect()
	database.ConnectRedis()

	// Firebase: auth for session exchange, Firestore as the record store
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: config.AppConfig.FirebaseProject},
		option.WithCredentialsFile(config.AppConfig.FirebaseCredPath))
	if err != nil {
		log.Fatal("Failed to initialize Firebase:", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal("Failed to initialize Firebase auth:", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatal("Failed to connect to Firestore:", err)
	}
	defer fsClient.Close()

	handlers.Store = store.NewFirestoreStore(fsClient)
	handlers.AuthClient = authClient
	services.InitNotificationService(authClient)

	// Setup router
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": config.AppConfig.AppName,
		})
	})

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	{
		auth.POST("/session", handlers.CreateSession)
	}

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// Debtors
		api.GET("/debtors", handlers.GetDebtors)
		api.GET("/debtors/stream", handlers.StreamDebtors)
		api.POST("/debtors", handlers.CreateDebtor)
		api.GET("/debtors/:id", handlers.GetDebtor)
		api.DELETE("/debtors/:id", handlers.DeleteDebtor)
		api.POST("/debtors/:id/archive", handlers.ArchiveDebtor)
		api.POST("/debtors/:id/unarchive", handlers.UnarchiveDebtor)
		api.GET("/archived", handlers.GetArchivedDebtors)

		// Payments
		api.POST("/debtors/:id/payments", handlers.CreatePayment)
		api.DELETE("/debtors/:id/payments/:pid", handlers.DeletePayment)

		// Metrics & report
		api.GET("/metrics", handlers.GetMetrics)
		api.GET("/report", handlers.DownloadReport)

		// Calendar browsing
		api.GET("/calendar/years", handlers.GetCalendarYears)
		api.GET("/calendar/:year/months", handlers.GetCalendarMonths)
		api.GET("/calendar/:year/:month", handlers.GetCalendarMonthDebtors)

		// Audit trail
		api.GET("/activity", handlers.GetActivity)
	}

	// Start server
	port := config.AppConfig.Port
	log.Printf("🚀 %s server starting on port %s", config.AppConfig.AppName, port)

	addr := "0.0.0.0:" + port
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
