package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/deikas123/thefoodbasket-sub001/docs"
	"github.com/deikas123/thefoodbasket-sub001/internal/config"
	"github.com/deikas123/thefoodbasket-sub001/internal/database"
	"github.com/deikas123/thefoodbasket-sub001/internal/handlers"
	mW "github.com/deikas123/thefoodbasket-sub001/internal/middleware"
	"github.com/deikas123/thefoodbasket-sub001/internal/scheduler"
	"github.com/deikas123/thefoodbasket-sub001/internal/services"
)

// @title Food Basket Loyalty Engine API
// @version 1.0
// @description Loyalty points ledger and rewards engine for the Food Basket storefront
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	docs.SwaggerInfo.Title = "Food Basket Loyalty Engine API"
	docs.SwaggerInfo.Description = "Loyalty points ledger and rewards engine"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize stores
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	loyaltyCfg := config.LoadLoyaltyConfig()

	// Initialize services
	ledgerService := services.NewLedgerService(db)
	settingsService := services.NewSettingsService(db)
	rewardsService := services.NewRewardsService(db, redisClient, ledgerService, settingsService, loyaltyCfg)
	referralService := services.NewReferralService(db, redisClient, ledgerService, settingsService, loyaltyCfg)

	rewardsHandler := handlers.NewRewardsHandler(rewardsService)
	referralHandler := handlers.NewReferralHandler(referralService)
	adminHandler := handlers.NewAdminHandler(rewardsService, settingsService)

	// Expiration sweep runs in-process; the admin endpoint can trigger it
	// ad hoc as well.
	expiryScheduler := scheduler.NewExpiryScheduler(rewardsService, loyaltyCfg.SweepCronSpec)
	if err := expiryScheduler.Start(); err != nil {
		log.Fatalf("Failed to start expiration scheduler: %v", err)
	}
	defer expiryScheduler.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			// Collaborator-facing engine operations
			r.Post("/loyalty/purchases", rewardsHandler.AwardPurchase)
			r.Post("/loyalty/reviews", rewardsHandler.AwardReview)
			r.Post("/loyalty/redemptions", rewardsHandler.Redeem)
			r.Post("/loyalty/redemptions/{redemptionId}/compensate", rewardsHandler.CompensateRedemption)
			r.Get("/loyalty/accounts/{accountId}", rewardsHandler.GetAccount)
			r.Get("/loyalty/accounts/{accountId}/entries", rewardsHandler.ListEntries)

			// Referral UI
			r.Post("/referrals/code", referralHandler.GenerateCode)
			r.Post("/referrals/apply", referralHandler.ApplyCode)
			r.Get("/referrals/qr", referralHandler.ShareQR)

			// Admin console
			r.Group(func(r chi.Router) {
				r.Use(mW.AdminOnly)

				r.Post("/admin/adjustments", adminHandler.AdjustPoints)
				r.Get("/admin/settings", adminHandler.GetSettings)
				r.Put("/admin/settings", adminHandler.UpdateSettings)
				r.Post("/admin/expire-sweep", rewardsHandler.ExpireSweep)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
