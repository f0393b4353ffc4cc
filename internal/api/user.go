package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/pagination"
	"github.com/pageza/foodgram/backend/internal/service"
)

// UserHandler serves account listings and subscriptions.
type UserHandler struct {
	userService service.IUserService
	presenter   *presenter
	paginator   pagination.Paginator
}

func NewUserHandler(userService service.IUserService, interactions service.IInteractionService, paginator pagination.Paginator) *UserHandler {
	return &UserHandler{
		userService: userService,
		presenter:   &presenter{users: userService, interactions: interactions},
		paginator:   paginator,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/subscriptions", middleware.RequireAuth(), h.ListSubscriptions)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.RequireAuth(), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req, err := h.paginator.Parse(c)
	if err != nil {
		pagination.NotFound(c)
		return
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), req.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := h.presenter.userList(c.Request.Context(), middleware.CurrentUserID(c), users)
	if err != nil {
		respondError(c, err)
		return
	}
	pagination.Respond(c, req, total, results)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.presenter.user(c.Request.Context(), middleware.CurrentUserID(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	viewerID := middleware.CurrentUserID(c)
	author, err := h.userService.Subscribe(c.Request.Context(), viewerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	follows, err := h.presenter.follows(c.Request.Context(), viewerID, []models.User{*author}, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, follows[0])
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	req, err := h.paginator.Parse(c)
	if err != nil {
		pagination.NotFound(c)
		return
	}

	viewerID := middleware.CurrentUserID(c)
	authors, total, err := h.userService.ListSubscriptions(c.Request.Context(), viewerID, req.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := h.presenter.follows(c.Request.Context(), viewerID, authors, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	pagination.Respond(c, req, total, results)
}

// recipesLimit reads recipes_limit. Missing or invalid values embed every recipe; 0 embeds none.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
