package router

import (
	"time"

	"paisaback/config"
	"paisaback/internal/cache"
	"paisaback/internal/handler"
	"paisaback/internal/middleware"
	"paisaback/internal/repository"
	"paisaback/internal/service"
	"paisaback/pkg/affiliate"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRegistry wires one adapter per configured network.
func NewRegistry(cfg *config.NetworksConfig) *affiliate.Registry {
	return affiliate.NewRegistry(
		affiliate.NewAdmitadAdapter(cfg.Admitad.Secret),
		affiliate.NewImpactAdapter(cfg.Impact.Secret),
		affiliate.NewCuelinksAdapter(cfg.Cuelinks.Secret),
		affiliate.NewFlipkartAdapter(cfg.Flipkart.Secret),
		affiliate.NewAmazonAdapter(cfg.Amazon.Secret),
		affiliate.NewCustomAdapter(cfg.Custom.Secret),
	)
}

func Setup(cfg *config.Config, db *gorm.DB, clickCache cache.ClickCache, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	registry := NewRegistry(&cfg.Networks)
	log.Info("affiliate adapters registered", zap.Strings("networks", registry.Networks()))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	clickRepo := repository.NewClickRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	clickSvc := service.NewClickService(cfg, registry, storeRepo, clickRepo, clickCache, log)
	redirectSvc := service.NewRedirectService(clickRepo, clickCache, log)
	referralSvc := service.NewReferralService(cfg, db, userRepo, txRepo, referralRepo, walletRepo, log)
	conversionSvc := service.NewConversionService(cfg, registry, db, clickRepo, txRepo, walletRepo, storeRepo, eventRepo, referralSvc, log)
	ledgerSvc := service.NewLedgerService(db, txRepo, walletRepo, referralSvc, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	clickHandler := handler.NewClickHandler(clickSvc, cfg)
	redirectHandler := handler.NewRedirectHandler(redirectSvc, cfg)
	webhookHandler := handler.NewWebhookHandler(conversionSvc, registry, eventRepo, log)
	txHandler := handler.NewTransactionHandler(ledgerSvc, referralSvc, conversionSvc, txRepo)
	walletHandler := handler.NewWalletHandler(walletRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	optionalAuthMw := middleware.AuthOptional(&cfg.JWT)
	adminMw := middleware.AdminRequired()
	limiter := middleware.NewRateLimiter(100, 60*time.Second)

	// Redirects and webhooks bypass the rate limiter: redirects are the
	// hot shopper path, and networks must never see a 429.
	r.GET("/r/:token", redirectHandler.Resolve)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")
	api.POST("/webhooks/affiliate/:network", webhookHandler.Handle)

	limited := api.Group("")
	limited.Use(middleware.RateLimit(limiter))
	{
		limited.POST("/auth/login", authHandler.Login)
		limited.POST("/clicks", optionalAuthMw, clickHandler.Create)

		me := limited.Group("/me")
		me.Use(authMw)
		{
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/transactions", txHandler.ListMine)
			me.GET("/referral-rewards", txHandler.ListMyRewards)
		}

		admin := limited.Group("")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/transactions", txHandler.List)
			admin.PUT("/transactions/:id/status", txHandler.UpdateStatus)
			admin.POST("/conversions/report", txHandler.ReportConversion)
			admin.PUT("/referral-rewards/:id/status", txHandler.UpdateRewardStatus)
			admin.GET("/webhook-events/flagged", webhookHandler.ListFlagged)
		}
	}

	return r
}
