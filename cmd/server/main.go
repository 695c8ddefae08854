package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/recantodospoetas/backend/internal/config"
	"github.com/recantodospoetas/backend/internal/handler"
	"github.com/recantodospoetas/backend/internal/middleware"
	"github.com/recantodospoetas/backend/internal/model"
	"github.com/recantodospoetas/backend/internal/repository"
	"github.com/recantodospoetas/backend/internal/service"
	"github.com/recantodospoetas/backend/pkg/database"
	"github.com/recantodospoetas/backend/pkg/mailer"
	"github.com/recantodospoetas/backend/pkg/payment"
	"github.com/recantodospoetas/backend/pkg/storage"
	"github.com/recantodospoetas/backend/pkg/token"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, rate limiting disabled")
	}

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail, err = mailer.NewSMTPMailer(mailer.Config{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		if err != nil {
			log.Fatalf("failed to initialize mailer: %v", err)
		}
	} else {
		log.Println("SMTP_HOST not set, outbound email disabled")
	}

	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("cloudinary not configured, uploads disabled: %v", err)
		imageStorage = nil
	}

	paymentProvider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repository.NewUserRepository(db)
	textRepo := repository.NewTextRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)

	authService := service.NewAuthService(userRepo, tokens, mail, cfg.FrontendURL)
	textService := service.NewTextService(textRepo)
	licenseService := service.NewLicenseService(licenseRepo, textRepo, userRepo, paymentProvider, mail, cfg.FrontendURL)

	authHandler := handler.NewAuthHandler(authService)
	textHandler := handler.NewTextHandler(textService)
	licenseHandler := handler.NewLicenseHandler(licenseService)
	uploadHandler := handler.NewUploadHandler(imageStorage)
	adminHandler := handler.NewAdminHandler(authService)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   time.Now().Format(time.RFC3339),
			"environment": cfg.AppEnv,
		})
	})

	api := router.Group("/api")
	api.Use(middleware.RateLimit(rdb, cfg.RateLimitMax, cfg.RateLimitWindow))

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		auth.PUT("/profile", authMiddleware.RequireAuth(), authHandler.UpdateProfile)
	}

	texts := api.Group("/texts")
	{
		texts.GET("/published", textHandler.ListPublished)
		texts.GET("/search", textHandler.Search)
		texts.GET("/slug/:slug", textHandler.GetBySlug)
		texts.GET("/id/:id", authMiddleware.OptionalAuth(), textHandler.GetByID)
		texts.GET("/author/:authorId", textHandler.ListByAuthor)

		texts.POST("", authMiddleware.RequireAuth(), textHandler.Create)
		texts.PUT("/:id", authMiddleware.RequireAuth(), textHandler.Update)
		texts.POST("/:id/publish", authMiddleware.RequireAuth(), textHandler.Publish)
		texts.DELETE("/:id", authMiddleware.RequireAuth(), textHandler.Delete)
		texts.POST("/:id/checkout", authMiddleware.RequireAuth(), licenseHandler.Checkout)
	}

	licenses := api.Group("/licenses")
	{
		licenses.POST("/webhook", licenseHandler.Webhook)
		licenses.GET("", authMiddleware.RequireAuth(), licenseHandler.ListMine)
	}

	if imageStorage != nil {
		api.POST("/upload", authMiddleware.RequireAuth(), uploadHandler.Upload)
	}

	admin := api.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/users/:id/promote", adminHandler.PromoteToAuthor)
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Text{},
		&model.Favorite{},
		&model.License{},
	)
}
