package http

import (
	"github.com/auroramart/personalization/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router. A nil gatherer leaves /metrics unrouted.
func SetupRouter(cfg *config.Config, handler *Handler, gatherer prometheus.Gatherer, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	var limiter *IPRateLimiter
	if cfg.RateLimit.PerIP > 0 {
		limiter = NewIPRateLimiter(cfg.RateLimit.PerIP)
	}

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter))
	{
		v1.GET("/recommendations", handler.GetRecommendations)

		customers := v1.Group("/customers/:id")
		{
			customers.GET("/cart/recommendations", handler.GetCartRecommendations)
			customers.GET("/preferred-category", handler.GetPreferredCategory)
			customers.POST("/preferred-category", handler.AssignPreferredCategory)
		}

		v1.POST("/chat/sessions/:id/messages", handler.PostChatMessage)
	}

	return router
}
