package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/pagination"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipeService service.IRecipeService
	interactions  service.IInteractionService
	presenter     *presenter
	paginator     pagination.Paginator
	createLimiter *middleware.RateLimiter
}

// NewRecipeHandler wires the recipe routes. createLimiter may be nil, which disables rate limiting.
func NewRecipeHandler(
	recipeService service.IRecipeService,
	userService service.IUserService,
	interactions service.IInteractionService,
	paginator pagination.Paginator,
	createLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		interactions:  interactions,
		presenter:     &presenter{users: userService, interactions: interactions},
		paginator:     paginator,
		createLimiter: createLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes", middleware.AuthenticatedOrReadOnly())
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.PATCH("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/favorite", h.AddFavorite)
		recipes.DELETE("/:id/favorite", h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	req, err := h.paginator.Parse(c)
	if err != nil {
		pagination.NotFound(c)
		return
	}

	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid author id", Field: "author"})
			return
		}
		filter.AuthorID = uint(author)
	}

	viewerID := middleware.CurrentUserID(c)
	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), viewerID, filter, req.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := h.presenter.recipes(c.Request.Context(), viewerID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	pagination.Respond(c, req, total, results)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrRecipeNotFound)
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.presenter.recipe(c.Request.Context(), middleware.CurrentUserID(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	viewerID := middleware.CurrentUserID(c)
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), viewerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.presenter.recipe(c.Request.Context(), viewerID, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrRecipeNotFound)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	viewerID := middleware.CurrentUserID(c)
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), viewerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.presenter.recipe(c.Request.Context(), viewerID, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrRecipeNotFound)
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.interactions.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.interactions.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.interactions.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.interactions.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.interactions.ShoppingList(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(items)))
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(context.Context, uint, uint) (*models.Recipe, error)) {
	id, ok := parseID(c, "id", service.ErrRecipeNotFound)
	if !ok {
		return
	}
	recipe, err := add(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shortRecipe(recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(context.Context, uint, uint) error) {
	id, ok := parseID(c, "id", service.ErrRecipeNotFound)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryFlag treats "1" and "true" as set.
func queryFlag(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}
