package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lootlink/internal/auth"
	"lootlink/internal/config"
	"lootlink/internal/database"
	"lootlink/internal/handlers"
	"lootlink/internal/jobs"
	"lootlink/internal/models"
	"lootlink/internal/notify"
	"lootlink/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	notifier := notify.LogNotifier{}
	ledgerService := services.NewLedgerService(db)
	lootService := services.NewLootService(db)
	investmentService := services.NewInvestmentService(db, cfg.App.ClientURL)
	referralService := services.NewReferralService(db, ledgerService, cfg.App.ReferralDedupPolicy)
	approvalService := services.NewApprovalService(db, ledgerService, notifier)
	withdrawalService := services.NewWithdrawalService(db, ledgerService, notifier)
	userService := services.NewUserService(db, ledgerService)
	reportService := services.NewReportService(db)

	// Initialize handlers
	referralHandler := handlers.NewReferralHandler(referralService)
	clientHandler := handlers.NewClientHandler(
		lootService,
		investmentService,
		referralService,
		ledgerService,
		withdrawalService,
		userService,
	)
	adminHandler := handlers.NewAdminHandler(
		lootService,
		approvalService,
		withdrawalService,
		userService,
		investmentService,
		reportService,
	)

	// Start daily platform stats snapshot job
	statsJob := jobs.NewStatsJob(reportService, cfg.App.StatsCron)
	if err := statsJob.Start(); err != nil {
		log.Fatalf("Failed to start stats job: %v", err)
	}
	defer statsJob.Stop()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		cfg.App.ClientURL,
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public referral routes, no auth so customers can land from shared links
	referral := router.Group("/api/referral")
	{
		referral.GET("/:code", referralHandler.GetReferral)
		referral.GET("/:code/validate", referralHandler.ValidateReferral)
		referral.GET("/:code/stats", referralHandler.GetReferralStats)
		referral.POST("/submit", referralHandler.SubmitReferral)
	}

	// Client routes (protected)
	client := router.Group("/api/client")
	client.Use(auth.AuthMiddleware(db))
	client.Use(auth.RequireRole(models.RoleClient))
	{
		client.GET("/loots", clientHandler.GetLoots)
		client.POST("/investments", clientHandler.CreateInvestment)
		client.GET("/investments", clientHandler.GetInvestments)
		client.GET("/investments/:id/qr", clientHandler.GetInvestmentQR)
		client.GET("/balance", clientHandler.GetBalance)
		client.GET("/referrals", clientHandler.GetReferrals)
		client.POST("/withdrawals", clientHandler.RequestWithdrawal)
		client.GET("/withdrawals", clientHandler.GetWithdrawals)
		client.GET("/profile", clientHandler.GetProfile)
		client.PUT("/profile", clientHandler.UpdateProfile)
		client.POST("/withdrawal-setup", clientHandler.SetupWithdrawal)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware(db))
	admin.Use(auth.RequireRole(models.RoleAdmin))
	{
		// Loot catalog
		admin.GET("/loots", adminHandler.GetLoots)
		admin.POST("/loots", adminHandler.CreateLoot)
		admin.PUT("/loots/:id", adminHandler.UpdateLoot)
		admin.DELETE("/loots/:id", adminHandler.DeleteLoot)

		// Referral approval queue
		admin.GET("/referrals/pending", adminHandler.GetPendingReferrals)
		admin.POST("/referrals/:id/approve", adminHandler.ApproveReferral)
		admin.POST("/referrals/:id/reject", adminHandler.RejectReferral)

		// Withdrawal settlement
		admin.GET("/withdrawals", adminHandler.GetWithdrawals)
		admin.PUT("/withdrawals/:id", adminHandler.SettleWithdrawal)

		// Client management
		admin.GET("/clients", adminHandler.GetClients)
		admin.GET("/clients/blocked", adminHandler.GetBlockedClients)
		admin.GET("/clients/deleted", adminHandler.GetDeletedClients)
		admin.GET("/clients/:id", adminHandler.GetClient)
		admin.POST("/clients/:id/block", adminHandler.BlockClient)
		admin.POST("/clients/:id/unblock", adminHandler.UnblockClient)
		admin.DELETE("/clients/:id", adminHandler.DeleteClient)
		admin.POST("/credit", adminHandler.CreditClient)

		// Reporting
		admin.GET("/client-customers", adminHandler.GetClientCustomers)
		admin.GET("/client-customers/export", adminHandler.ExportClientCustomers)
		admin.GET("/clients-customers-summary", adminHandler.GetClientsCustomersSummary)
		admin.GET("/analytics", adminHandler.GetAnalytics)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
