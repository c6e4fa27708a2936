package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/analysis"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/handlers"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/middleware"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/config"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/cron"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/db"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/email"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/metrics"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/notification"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/seed"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to create pgx pool: %v", err)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		log.Fatalf("❌ Failed to ping database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	repos := repository.NewRepositories(pgPool)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			User:        cfg.SMTPUser,
			Password:    cfg.SMTPPassword,
			From:        cfg.SMTPFrom,
			FromName:    cfg.SMTPFromName,
			UseTLS:      cfg.SMTPUseTLS,
			FrontendURL: cfg.FrontendURL,
		})
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize Analysis Client (optional)
	// ============================================
	var analysisCli *analysis.Client
	if cfg.AnalysisURL != "" {
		analysisCli = analysis.NewClient(cfg.AnalysisURL, cfg.AnalysisAPIKey)
		log.Println("🤖 Analysis client initialized")
	} else {
		log.Println("⚠️  Analysis not configured (ANALYSIS_URL not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		AnalysisCli: analysisCli,
		Cache:       redisDB,
		Broadcaster: broadcaster,
	})
	log.Println("✨ All services initialized")

	h := handlers.NewHandlers(services, notificationSvc)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(services, repos.NotificationRepo)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()
	r.Use(metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      cacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Invitation preview works without login so the landing page
		// can show which group the code opens.
		api.GET("/invitations/:code", h.Invitation.GetByCode)

		// Public group browsing; auth is optional so leaders see their
		// private groups elsewhere.
		api.GET("/groups", h.Group.ListPublic)
		api.GET("/partners", h.Partner.List)
		api.GET("/partners/:id", h.Partner.Get)
		api.GET("/beneficiaries", h.Partner.ListBeneficiaries)
		api.GET("/beneficiaries/:id", h.Partner.GetBeneficiary)

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.PUT("/me", h.User.UpdateMe)
			}

			// Group routes
			groups := protected.Group("/groups")
			{
				groups.POST("", h.Group.Create)
				groups.GET("/mine", h.Group.ListMine)
				groups.GET("/:id", h.Group.Get)
				groups.PUT("/:id", h.Group.Update)
				groups.DELETE("/:id", h.Group.Deactivate)

				// Roster
				groups.GET("/:id/members", h.Group.ListMembers)
				groups.POST("/:id/members", h.Group.AddMember)
				groups.DELETE("/:id/members/:memberId", h.Group.RemoveMember)

				// Join requests
				groups.POST("/:id/join-requests", h.JoinRequest.Create)
				groups.GET("/:id/join-requests", h.JoinRequest.ListPending)

				// Invitations
				groups.POST("/:id/invitations", h.Invitation.CreateEmail)
				groups.POST("/:id/invitations/link", h.Invitation.CreateLink)
				groups.GET("/:id/invitations", h.Invitation.ListPending)

				// Progress
				groups.GET("/:id/timeline", h.Progress.Timeline)
				groups.GET("/:id/ranking", h.Progress.Ranking)
				groups.GET("/:id/analysis", h.Analysis.Analyze)
			}

			// Join request resolution
			joinRequests := protected.Group("/join-requests")
			{
				joinRequests.GET("/mine", h.JoinRequest.ListMine)
				joinRequests.POST("/:id/approve", h.JoinRequest.Approve)
				joinRequests.POST("/:id/reject", h.JoinRequest.Reject)
			}

			// Invitation redemption and administration
			invitations := protected.Group("/invitations")
			{
				invitations.POST("/:code/redeem", h.Invitation.Redeem)
				invitations.POST("/id/:id/renew", h.Invitation.Renew)
				invitations.DELETE("/id/:id", h.Invitation.Revoke)
			}

			// Member progress
			members := protected.Group("/members")
			{
				members.POST("/:id/progress", h.Progress.Record)
				members.GET("/:id/progress", h.Progress.ListByMember)
			}

			// Partner administration
			partners := protected.Group("/partners")
			{
				partners.POST("", h.Partner.Create)
				partners.PUT("/:id", h.Partner.Update)
				partners.DELETE("/:id", h.Partner.Deactivate)
			}

			beneficiaries := protected.Group("/beneficiaries")
			{
				beneficiaries.POST("", h.Partner.CreateBeneficiary)
				beneficiaries.PUT("/:id/verify", h.Partner.VerifyBeneficiary)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	// ============================================
	// Start Server
	// ============================================
	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func cacheStatus(redisDB *db.RedisDB) string {
	if redisDB == nil {
		return "disabled"
	}
	return "connected"
}
