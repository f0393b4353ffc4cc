package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/pagination"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves tags and ingredients. Writes are limited to catalog managers.
type CatalogHandler struct {
	catalog   service.ICatalogService
	paginator pagination.Paginator
}

func NewCatalogHandler(catalog service.ICatalogService, paginator pagination.Paginator) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, paginator: paginator}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags", middleware.AdminOrReadOnly())
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", h.CreateTag)
		tags.PUT("/:id", h.UpdateTag)
		tags.PATCH("/:id", h.UpdateTag)
		tags.DELETE("/:id", h.DeleteTag)
	}

	ingredients := router.Group("/ingredients", middleware.AdminOrReadOnly())
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", h.CreateIngredient)
		ingredients.PUT("/:id", h.UpdateIngredient)
		ingredients.PATCH("/:id", h.UpdateIngredient)
		ingredients.DELETE("/:id", h.DeleteIngredient)
	}
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	req, err := h.paginator.Parse(c)
	if err != nil {
		pagination.NotFound(c)
		return
	}
	tags, total, err := h.catalog.ListTags(c.Request.Context(), req.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	pagination.Respond(c, req, total, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrTagNotFound)
	if !ok {
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req types.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrTagNotFound)
	if !ok {
		return
	}
	var req types.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	tag, err := h.catalog.UpdateTag(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrTagNotFound)
	if !ok {
		return
	}
	if err := h.catalog.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListIngredients supports ?name= for a case-insensitive prefix match.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	req, err := h.paginator.Parse(c)
	if err != nil {
		pagination.NotFound(c)
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	ingredients, total, err := h.catalog.ListIngredients(c.Request.Context(), name, req.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	pagination.Respond(c, req, total, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrIngredientNotFound)
	if !ok {
		return
	}
	ingredient, err := h.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req types.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ingredient, err := h.catalog.CreateIngredient(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrIngredientNotFound)
	if !ok {
		return
	}
	var req types.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ingredient, err := h.catalog.UpdateIngredient(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	id, ok := parseID(c, "id", service.ErrIngredientNotFound)
	if !ok {
		return
	}
	if err := h.catalog.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
