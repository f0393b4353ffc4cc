package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// SetupRouter builds the engine with the middleware chain and every route.
// health may be nil, in which case /health is not registered.
func SetupRouter(cfg *config.Config, logger zerolog.Logger, svc api.Services, health *api.HealthHandler) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.CORS(cfg.Origins()),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
	})

	if health != nil {
		router.GET("/health", health.HealthCheck)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api", middleware.Authenticate(svc.Auth, svc.Auth))
	api.RegisterRoutes(apiGroup, svc, cfg)

	return router
}
