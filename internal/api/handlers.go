package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/pagination"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth         service.IAuthService
	Users        service.IUserService
	Catalog      service.ICatalogService
	Recipes      service.IRecipeService
	Interactions service.IInteractionService
	// RecipeLimiter is optional.
	RecipeLimiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes on the /api group
func RegisterRoutes(router *gin.RouterGroup, svc Services, cfg *config.Config) {
	general := pagination.Fixed(cfg.PageSize)
	userPages := pagination.WithLimit(cfg.UserPageSize, cfg.MaxPageSize)

	NewAuthHandler(svc.Auth, svc.Users, svc.Interactions).RegisterRoutes(router)
	NewUserHandler(svc.Users, svc.Interactions, userPages).RegisterRoutes(router)
	NewCatalogHandler(svc.Catalog, general).RegisterRoutes(router)
	NewRecipeHandler(svc.Recipes, svc.Users, svc.Interactions, userPages, svc.RecipeLimiter).RegisterRoutes(router)
}

// HealthHandler reports whether the backing stores answer.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler creates a health handler. redisClient may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK
	if err := database.HealthCheck(ctx, h.db); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
