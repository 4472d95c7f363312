package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ulule/limiter/v3"

	"github.com/ucardlabs/ucard-admin/internal/auth"
	"github.com/ucardlabs/ucard-admin/internal/config"
	"github.com/ucardlabs/ucard-admin/internal/http/middleware"
	"github.com/ucardlabs/ucard-admin/internal/interface/http/handler"
	"github.com/ucardlabs/ucard-admin/internal/metrics"
)

// Deps собирает всё, что нужно роутеру. Tokens == nil отключает проверку токенов.
type Deps struct {
	Kyc            *handler.KycHandler
	SystemConfig   *handler.SystemConfigHandler
	Health         *handler.HealthHandler
	Tokens         *auth.AdminTokens
	RateLimitStore limiter.Store
	Registry       *prometheus.Registry
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", deps.Health.Health)
	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Registry)))
	}

	api := r.Group("/api")
	api.Use(middleware.AdminAuth(deps.Tokens))

	kycGroup := api.Group("/kyc-data")
	{
		kycGroup.GET("", deps.Kyc.List)
		kycGroup.GET("/options", deps.Kyc.Options)
		kycGroup.GET("/cardbin", deps.Kyc.CardBins)

		// Лимит только на аудите: каждый запрос уходит во внешнее API.
		auditRateLimit := middleware.RateLimitMiddleware(deps.RateLimitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)
		kycGroup.POST("/audit", auditRateLimit, deps.Kyc.Audit)
	}

	configGroup := api.Group("/system-config")
	{
		configGroup.GET("", deps.SystemConfig.List)
		configGroup.POST("", deps.SystemConfig.Create)
		configGroup.PUT("", deps.SystemConfig.Update)
		configGroup.DELETE("", deps.SystemConfig.Delete)
	}

	return r
}
