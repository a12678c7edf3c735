package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aicaddy/caddy-api/internal/api/handlers"
	"github.com/aicaddy/caddy-api/internal/api/middleware"
	"github.com/aicaddy/caddy-api/internal/caddy"
	"github.com/aicaddy/caddy-api/internal/services"
	"github.com/aicaddy/caddy-api/pkg/config"
	"github.com/aicaddy/caddy-api/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, db *database.DB, cache *services.CacheService, cfg *config.Config, log *logrus.Logger) {
	// Initialize services
	engine := caddy.NewEngine(log)
	shotHistory := services.NewShotHistoryService(db.DB, cache, log, time.Duration(cfg.ClubStatsCacheTTL)*time.Second)
	recommendations := services.NewRecommendationService(engine, shotHistory, log)
	parser := services.NewLaunchMonitorParser(log)
	importService := services.NewImportService(db.DB, parser, shotHistory, log)
	rateLimiter := services.NewRecommendationRateLimiter(cache, cfg.RecommendationRateLimit)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	recommendationHandler := handlers.NewRecommendationHandler(recommendations, log)
	clubHandler := handlers.NewClubHandler(db, shotHistory, log)
	roundHandler := handlers.NewRoundHandler(db, shotHistory, log)
	importHandler := handlers.NewImportHandler(importService, log, cfg.MaxImportBytes)

	// Public auth endpoints
	group.POST("/auth/register", authHandler.Register)
	group.POST("/auth/login", authHandler.Login)

	// Everything else requires authentication; shot histories are per-user.
	// In development unauthenticated requests run as the seeded demo golfer.
	auth := group.Group("")
	if cfg.IsDevelopment() {
		auth.Use(middleware.OptionalAuth(cfg.JWTSecret, 1))
	} else {
		auth.Use(middleware.AuthRequired(cfg.JWTSecret))
	}
	{
		// Recommendation endpoints, rate limited per user
		rec := auth.Group("/recommendations")
		rec.Use(middleware.RecommendationRateLimit(rateLimiter))
		{
			rec.POST("", recommendationHandler.Recommend)
			rec.POST("/visualize", recommendationHandler.Visualize)
		}

		// Bag management
		auth.GET("/clubs", clubHandler.ListClubs)
		auth.POST("/clubs", clubHandler.CreateClub)
		auth.PUT("/clubs/:id", clubHandler.UpdateClub)
		auth.DELETE("/clubs/:id", clubHandler.DeleteClub)
		auth.GET("/clubs/stats", clubHandler.GetClubStats)

		// Rounds and shots
		auth.GET("/rounds", roundHandler.ListRounds)
		auth.GET("/rounds/:id", roundHandler.GetRound)
		auth.POST("/rounds", roundHandler.CreateRound)
		auth.POST("/rounds/:id/shots", roundHandler.AddShot)
		auth.DELETE("/rounds/:id", roundHandler.DeleteRound)

		// Launch monitor imports
		auth.POST("/imports", importHandler.Upload)
		auth.GET("/imports", importHandler.ListImports)
		auth.GET("/imports/:id", importHandler.GetImport)
		auth.POST("/imports/:id/confirm", importHandler.Confirm)
	}
}
