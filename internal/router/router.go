package router

import (
	"time"

	"pairvest/config"
	"pairvest/internal/domain"
	"pairvest/internal/handler"
	"pairvest/internal/middleware"
	"pairvest/internal/repository"
	"pairvest/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, clock domain.Clock) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bonusRepo := repository.NewBonusRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	bonusSvc := service.NewBonusService(db, clock)
	investmentSvc := service.NewInvestmentService(db, clock, bonusSvc)
	pairingSvc := service.NewPairingService(db, clock, investmentSvc, bonusSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	investmentHandler := handler.NewInvestmentHandler(investmentSvc)
	pairingHandler := handler.NewPairingHandler(pairingSvc)
	referralHandler := handler.NewReferralHandler(bonusSvc, userRepo, bonusRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	confirmLimiter := middleware.NewInMemoryRateLimiter(10, 60*time.Second)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		investments := api.Group("/investments")
		investments.Use(authMw)
		{
			investments.POST("", investmentHandler.Create)
			investments.GET("", investmentHandler.List)
			investments.GET("/:id", investmentHandler.Get)
		}

		pairings := api.Group("/pairings")
		pairings.Use(authMw)
		{
			pairings.GET("", pairingHandler.List)
			pairings.POST("/:id/confirm", middleware.RateLimit(confirmLimiter), pairingHandler.ConfirmPayment)
		}

		referrals := api.Group("/referrals")
		referrals.Use(authMw)
		{
			referrals.GET("/summary", referralHandler.Summary)
			referrals.GET("/history", referralHandler.History)
		}
	}

	return r
}
