package handler

import (
	"net/http"
	"strconv"

	"drugbee/internal/apierror"
	"drugbee/internal/dto"
	"drugbee/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// AdjustStock godoc
// @Summary      Manually adjust product stock
// @Description  Applies a signed delta (floor-clamped at zero) and records an adjustment in the movement ledger.
// @Tags         inventory
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string                 true "Product UUID"
// @Param        body body dto.AdjustStockRequest true "Delta and reason"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/inventory/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product ID"))
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AdjustStock(c.Request.Context(), id, req); err != nil {
		writeBillingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Movements godoc
// @Summary      Stock movement history for a product
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Product UUID"
// @Param        limit query int    false "Max rows (default 50)"
// @Success      200   {array} model.StockMovement
// @Router       /v1/inventory/{id}/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product ID"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	movements, err := h.svc.Movements(c.Request.Context(), id, limit)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

// LowStock godoc
// @Summary      Products at or below their minimum stock level
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ProductResponse
// @Router       /v1/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStockAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to query low stock"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Expiring godoc
// @Summary      Products expiring within the alert window
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ProductResponse
// @Router       /v1/inventory/expiring [get]
func (h *InventoryHandler) Expiring(c *gin.Context) {
	resp, err := h.svc.ExpiryAlerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to query expiring products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
