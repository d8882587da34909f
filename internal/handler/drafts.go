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

// DraftsHandler exposes the in-progress sale (cart) endpoints. Drafts live
// in Redis with a TTL and only become durable on finalize.
type DraftsHandler struct{ svc service.DraftService }

func NewDraftsHandler(svc service.DraftService) *DraftsHandler { return &DraftsHandler{svc: svc} }

// Start godoc
// @Summary      Start an empty sale draft
// @Tags         drafts
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} dto.DraftResponse
// @Router       /v1/drafts [post]
func (h *DraftsHandler) Start(c *gin.Context) {
	resp, err := h.svc.StartDraft(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to start draft"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Fetch a draft with live totals
// @Tags         drafts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Draft UUID"
// @Success      200 {object} dto.DraftResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/drafts/{id} [get]
func (h *DraftsHandler) Get(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetDraft(c.Request.Context(), id)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary      Add a product line to a draft
// @Description  Adding the same product again merges into the existing line. Quantity is soft-checked against current stock.
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Draft UUID"
// @Param        body body dto.AddItemRequest true "Product and quantity"
// @Success      200  {object} dto.DraftResponse
// @Failure      409  {object} apierror.APIError "out of stock / insufficient stock"
// @Router       /v1/drafts/{id}/items [post]
func (h *DraftsHandler) AddItem(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), id, req)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateQuantity godoc
// @Summary      Change a line quantity
// @Description  A quantity of zero or less removes the line.
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string                   true "Draft UUID"
// @Param        index path int                      true "Line index (0-based)"
// @Param        body  body dto.UpdateQuantityRequest true "New quantity"
// @Success      200   {object} dto.DraftResponse
// @Router       /v1/drafts/{id}/items/{index} [put]
func (h *DraftsHandler) UpdateQuantity(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid line index"))
		return
	}
	var req dto.UpdateQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateQuantity(c.Request.Context(), id, index, req)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem godoc
// @Summary      Remove a line from a draft
// @Description  Removing a line that no longer exists is a no-op.
// @Tags         drafts
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string true "Draft UUID"
// @Param        index path int    true "Line index (0-based)"
// @Success      200   {object} dto.DraftResponse
// @Router       /v1/drafts/{id}/items/{index} [delete]
func (h *DraftsHandler) RemoveItem(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid line index"))
		return
	}
	resp, err := h.svc.RemoveItem(c.Request.Context(), id, index)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetDiscount godoc
// @Summary      Set the bill-level discount percentage
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Draft UUID"
// @Param        body body dto.SetDiscountRequest true "Discount 0-100"
// @Success      200  {object} dto.DraftResponse
// @Router       /v1/drafts/{id}/discount [put]
func (h *DraftsHandler) SetDiscount(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	var req dto.SetDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetDiscount(c.Request.Context(), id, req)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateCustomer godoc
// @Summary      Set customer and payment details on a draft
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                          true "Draft UUID"
// @Param        body body dto.UpdateDraftCustomerRequest true "Customer block"
// @Success      200  {object} dto.DraftResponse
// @Router       /v1/drafts/{id}/customer [put]
func (h *DraftsHandler) UpdateCustomer(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	var req dto.UpdateDraftCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Discard godoc
// @Summary      Discard a draft without billing
// @Tags         drafts
// @Security     BearerAuth
// @Param        id path string true "Draft UUID"
// @Success      204
// @Router       /v1/drafts/{id} [delete]
func (h *DraftsHandler) Discard(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	if err := h.svc.DiscardDraft(c.Request.Context(), id); err != nil {
		writeBillingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftsHandler) draftID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid draft ID"))
		return uuid.Nil, false
	}
	return id, true
}
