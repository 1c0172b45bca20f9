package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"titanax/internal/config"
	"titanax/internal/database"
	"titanax/internal/domain"
	"titanax/internal/middleware"
	"titanax/internal/modules/account"
	"titanax/internal/notification"
	"titanax/internal/pkg/token"
	"titanax/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	codec := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL)
	mailer := notification.NewConsoleMailer(cfg.FrontendURL)

	accountService := account.NewService(userRepo, codec, mailer, cfg.ResetTokenTTL, cfg.VerifyTokenTTL)
	accountHandler := account.NewHandler(accountService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Server is healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	users := api.Group("/users")
	{
		authLimiter := middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
		accountHandler.RegisterPublicRoutes(users, authLimiter)

		protected := users.Group("/")
		protected.Use(middleware.Auth(codec))
		accountHandler.RegisterProtectedRoutes(protected)
	}

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
