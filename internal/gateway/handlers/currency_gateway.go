package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"qmenus-system/internal/catalog"
	"qmenus-system/internal/currency"
	"qmenus-system/internal/draft"
)

type CurrencyHTTPHandler struct {
	drafts *draft.Store
	repo   *catalog.Repository
}

func NewCurrencyHTTPHandler(drafts *draft.Store, repo *catalog.Repository) *CurrencyHTTPHandler {
	return &CurrencyHTTPHandler{
		drafts: drafts,
		repo:   repo,
	}
}

type SetCurrencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

func (h *CurrencyHTTPHandler) GetCurrency(c *gin.Context) {
	restaurantID := c.Param("id")

	preferred := h.drafts.PreferredCurrency(c.Request.Context(), restaurantID)
	if preferred != "" {
		c.JSON(http.StatusOK, successResponse("Preferred currency retrieved", map[string]interface{}{
			"currency":  preferred,
			"preferred": true,
		}))
		return
	}

	restaurant, err := h.repo.Restaurant(c.Request.Context(), restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Base currency retrieved", map[string]interface{}{
		"currency":  restaurant.Currency,
		"preferred": false,
	}))
}

// SetCurrency stores the display currency. Choosing the base currency
// clears the preference instead of storing a no-op conversion.
func (h *CurrencyHTTPHandler) SetCurrency(c *gin.Context) {
	var req SetCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	restaurantID := c.Param("id")
	restaurant, err := h.repo.Restaurant(c.Request.Context(), restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if strings.EqualFold(code, restaurant.Currency) {
		h.drafts.ClearPreferredCurrency(c.Request.Context(), restaurantID)
		c.JSON(http.StatusOK, successResponse("Display currency reset to base", map[string]interface{}{
			"currency": restaurant.Currency,
		}))
		return
	}

	h.drafts.SavePreferredCurrency(c.Request.Context(), restaurantID, code)
	c.JSON(http.StatusOK, successResponse("Display currency updated", map[string]interface{}{
		"currency": code,
	}))
}

func (h *CurrencyHTTPHandler) ClearCurrency(c *gin.Context) {
	h.drafts.ClearPreferredCurrency(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, successResponse("Display currency cleared", nil))
}

// Convert answers ?amount=&to= against the restaurant's operator-entered
// rates. A missing or inactive rate is not an error: the base amount comes
// back unchanged.
func (h *CurrencyHTTPHandler) Convert(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid amount"))
		return
	}

	restaurant, err := h.repo.Restaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	converted := currency.Convert(amount, restaurant.Currency, c.Query("to"), restaurant.Rates)
	c.JSON(http.StatusOK, successResponse("Amount converted", map[string]interface{}{
		"amount":    converted.Amount,
		"formatted": decimal.NewFromFloat(converted.Amount).StringFixed(2),
		"currency":  converted.Currency,
	}))
}
