package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qmenus-system/internal/catalog"
)

type MenuHTTPHandler struct {
	repo *catalog.Repository
}

func NewMenuHTTPHandler(repo *catalog.Repository) *MenuHTTPHandler {
	return &MenuHTTPHandler{
		repo: repo,
	}
}

func (h *MenuHTTPHandler) GetRestaurant(c *gin.Context) {
	restaurant, err := h.repo.Restaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Restaurant not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Restaurant retrieved successfully", restaurant))
}

func (h *MenuHTTPHandler) GetMenu(c *gin.Context) {
	items, err := h.repo.Menu(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Menu retrieved successfully", items))
}

// RefreshCatalog drops the cached restaurant and menu so the next read
// comes from the database.
func (h *MenuHTTPHandler) RefreshCatalog(c *gin.Context) {
	h.repo.InvalidateCatalogCaches(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, successResponse("Catalog cache invalidated", nil))
}
