package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qmenus-system/internal/catalog"
	"qmenus-system/internal/database"
	"qmenus-system/internal/draft"
	"qmenus-system/internal/pricing"
	"qmenus-system/internal/sync"
)

type OrderHTTPHandler struct {
	engine       *sync.Engine
	repo         *catalog.Repository
	drafts       *draft.Store
	archiver     *database.OrderArchiver
	restaurantID string
}

func NewOrderHTTPHandler(engine *sync.Engine, repo *catalog.Repository, drafts *draft.Store, archiver *database.OrderArchiver, restaurantID string) *OrderHTTPHandler {
	return &OrderHTTPHandler{
		engine:       engine,
		repo:         repo,
		drafts:       drafts,
		archiver:     archiver,
		restaurantID: restaurantID,
	}
}

type SubmitOrderRequest struct {
	TableID   string `json:"table_id" binding:"required"`
	OrderType string `json:"order_type" binding:"required,oneof=DINE_IN DELIVERY"`
}

func (h *OrderHTTPHandler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Active orders retrieved successfully",
		Data:    h.engine.ActiveOrders(),
		Meta: map[string]interface{}{
			"submissions": h.engine.Submissions(),
		},
	})
}

func (h *OrderHTTPHandler) GetHighlights(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Highlights retrieved successfully", h.engine.Highlights()))
}

func (h *OrderHTTPHandler) GetOrder(c *gin.Context) {
	order, ok := h.engine.GetOrder(c.Param("orderId"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

func (h *OrderHTTPHandler) SelectOrder(c *gin.Context) {
	id := c.Param("orderId")
	if _, ok := h.engine.GetOrder(id); !ok {
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	}
	h.engine.Select(id)
	c.JSON(http.StatusOK, successResponse("Order selected", nil))
}

// GetReceipt decomposes the order's authoritative total into subtotal and
// tax lines for display; ?currency= overrides the stored display currency.
func (h *OrderHTTPHandler) GetReceipt(c *gin.Context) {
	order, ok := h.engine.GetOrder(c.Param("orderId"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	}

	restaurant, err := h.repo.Restaurant(c.Request.Context(), h.restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	displayCurrency := c.Query("currency")
	if displayCurrency == "" {
		displayCurrency = h.drafts.PreferredCurrency(c.Request.Context(), h.restaurantID)
	}

	lines := make([]pricing.Line, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, pricing.Line{PriceInclusive: item.Price, Quantity: item.Quantity})
	}

	c.JSON(http.StatusOK, successResponse("Receipt computed successfully",
		buildReceipt(restaurant, order.TotalPrice, lines, displayCurrency)))
}

func (h *OrderHTTPHandler) SubmitOrder(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	orderType := sync.OrderType(req.OrderType)
	var tableNumber *int
	if orderType == sync.OrderTypeDineIn {
		n, err := strconv.Atoi(req.TableID)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid table number"))
			return
		}
		tableNumber = &n
	}

	key := draft.Key{RestaurantID: h.restaurantID, TableID: req.TableID}
	submission, err := h.engine.Submit(c.Request.Context(), key, orderType, tableNumber)
	if err != nil {
		if errors.Is(err, sync.ErrEmptyDraft) {
			c.JSON(http.StatusBadRequest, errorResponse("Draft is empty"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to submit order"))
		return
	}

	c.JSON(http.StatusAccepted, successResponse("Order submitted", submission))
}

// LoadSnapshot replaces the working set from a bootstrap fetch after a
// reconnect or page reload. Highlight state is recomputed from the order
// timestamps, not restored.
func (h *OrderHTTPHandler) LoadSnapshot(c *gin.Context) {
	var orders []sync.Order
	if err := c.ShouldBindJSON(&orders); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	h.engine.LoadActive(orders)
	c.JSON(http.StatusOK, successResponse("Active orders loaded", h.engine.ActiveOrders()))
}

func (h *OrderHTTPHandler) ListSubmissions(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Submissions retrieved successfully", h.engine.Submissions()))
}

func (h *OrderHTTPHandler) ListClosedOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.archiver.ClosedOrders(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Archive service error"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Closed orders retrieved successfully", records))
}
