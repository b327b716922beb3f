package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qmenus-system/internal/catalog"
	"qmenus-system/internal/draft"
	"qmenus-system/internal/pricing"
)

type DraftHTTPHandler struct {
	drafts *draft.Store
	repo   *catalog.Repository
}

func NewDraftHTTPHandler(drafts *draft.Store, repo *catalog.Repository) *DraftHTTPHandler {
	return &DraftHTTPHandler{
		drafts: drafts,
		repo:   repo,
	}
}

type AddItemRequest struct {
	MenuItemID string              `json:"menu_item_id" binding:"required"`
	Quantity   int                 `json:"quantity" binding:"required,min=1"`
	Notes      string              `json:"notes,omitempty"`
	Extras     map[string][]string `json:"extras,omitempty"`
}

type AddCustomItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Notes    string  `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func draftKey(c *gin.Context) draft.Key {
	return draft.Key{
		RestaurantID: c.Param("id"),
		TableID:      c.Param("tableId"),
	}
}

// draftView pairs the draft with its display receipt: the running total
// decomposed against the restaurant's tax list, in the preferred display
// currency.
func (h *DraftHTTPHandler) draftView(c *gin.Context, d draft.Draft) map[string]interface{} {
	view := map[string]interface{}{
		"draft":     d,
		"has_items": d.HasItems(),
	}

	restaurant, err := h.repo.Restaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		return view
	}

	var total float64
	lines := make([]pricing.Line, 0, len(d.Items))
	for _, line := range d.Items {
		lineTotal := line.UnitPrice * float64(line.Quantity)
		total += lineTotal
		lines = append(lines, pricing.Line{PriceInclusive: lineTotal, Quantity: line.Quantity})
	}

	preferred := h.drafts.PreferredCurrency(c.Request.Context(), restaurant.ID)
	view["receipt"] = buildReceipt(restaurant, total, lines, preferred)
	return view
}

func (h *DraftHTTPHandler) GetDraft(c *gin.Context) {
	d := h.drafts.Load(c.Request.Context(), draftKey(c))
	c.JSON(http.StatusOK, successResponse("Draft retrieved successfully", h.draftView(c, d)))
}

func (h *DraftHTTPHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	key := draftKey(c)
	restaurant, err := h.repo.Restaurant(c.Request.Context(), key.RestaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	item, err := h.repo.MenuItem(c.Request.Context(), key.RestaurantID, req.MenuItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("Menu item not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Catalog service error"))
		return
	}

	d := h.drafts.Load(c.Request.Context(), key)
	d = draft.AddSelection(d, item, req.Quantity, req.Notes, req.Extras, restaurant.Currency)
	h.drafts.Save(c.Request.Context(), key, d)

	c.JSON(http.StatusOK, successResponse("Item added to draft", h.draftView(c, d)))
}

func (h *DraftHTTPHandler) AddCustomItem(c *gin.Context) {
	var req AddCustomItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	key := draftKey(c)
	currencyCode := ""
	if restaurant, err := h.repo.Restaurant(c.Request.Context(), key.RestaurantID); err == nil {
		currencyCode = restaurant.Currency
	}

	d := h.drafts.Load(c.Request.Context(), key)
	d = draft.AddCustomLine(d, req.Name, req.Price, req.Quantity, req.Notes, currencyCode)
	h.drafts.Save(c.Request.Context(), key, d)

	c.JSON(http.StatusOK, successResponse("Custom item added to draft", h.draftView(c, d)))
}

func (h *DraftHTTPHandler) RemoveItem(c *gin.Context) {
	key := draftKey(c)
	d := h.drafts.Load(c.Request.Context(), key)
	d = draft.RemoveLine(d, c.Param("lineId"))

	if !d.HasItems() {
		h.drafts.Clear(c.Request.Context(), key)
	} else {
		h.drafts.Save(c.Request.Context(), key, d)
	}

	c.JSON(http.StatusOK, successResponse("Item removed from draft", h.draftView(c, d)))
}

func (h *DraftHTTPHandler) UpdateCustomer(c *gin.Context) {
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	key := draftKey(c)
	d := h.drafts.Load(c.Request.Context(), key)
	if req.CustomerName != nil {
		d.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		d.CustomerPhone = *req.CustomerPhone
	}
	if req.CustomerAddress != nil {
		d.CustomerAddress = *req.CustomerAddress
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	h.drafts.Save(c.Request.Context(), key, d)

	c.JSON(http.StatusOK, successResponse("Draft updated successfully", h.draftView(c, d)))
}

func (h *DraftHTTPHandler) ClearDraft(c *gin.Context) {
	h.drafts.Clear(c.Request.Context(), draftKey(c))
	c.JSON(http.StatusOK, successResponse("Draft cleared", nil))
}
