package handler

import (
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockHandler exposes the stock ledger of single items
type StockHandler struct {
	BaseHandler
	stock *inventoryapp.StockService
}

// NewStockHandler creates a StockHandler
func NewStockHandler(stock *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// StockResponse is the on-hand quantity of an item
type StockResponse struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AdjustStockRequest is a manual signed change; negative deltas remove stock
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason" binding:"required,max=500"`
}

// ConsistencyResponse reports whether count and movement history agree
type ConsistencyResponse struct {
	ItemID     uuid.UUID `json:"item_id"`
	Consistent bool      `json:"consistent"`
}

// Get handles GET /stock/:itemId. Items never stocked report zero.
//
// @Summary      Get stock level
// @Description  Items that were never stocked report zero
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} dto.Response{data=StockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock/{itemId} [get]
func (h *StockHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}

	qty, err := h.stock.GetStock(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, StockResponse{ItemID: itemID, Quantity: qty})
}

// Adjust handles POST /stock/:itemId/adjustments
//
// @Summary      Adjust stock
// @Description  Apply a signed manual adjustment; negative deltas may not take stock below zero
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        itemId path string true "Item ID"
// @Param        request body AdjustStockRequest true "Adjustment"
// @Success      201 {object} dto.Response{data=inventoryapp.StockMovementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock/{itemId}/adjustments [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.stock.AdjustStock(c.Request.Context(), tenantID, itemID, req.Delta, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Movements handles GET /stock/:itemId/movements, newest first
//
// @Summary      List stock movements
// @Description  Newest first
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        itemId path string true "Item ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockMovementResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock/{itemId}/movements [get]
func (h *StockHandler) Movements(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	page, err := h.stock.ListMovements(c.Request.Context(), tenantID, itemID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Verify handles GET /stock/:itemId/consistency
//
// @Summary      Verify stock consistency
// @Description  Compare the stock count with the sum of its movement history
// @Tags         stock
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} dto.Response{data=ConsistencyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock/{itemId}/consistency [get]
func (h *StockHandler) Verify(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}

	consistent, err := h.stock.VerifyConsistency(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ConsistencyResponse{ItemID: itemID, Consistent: consistent})
}
