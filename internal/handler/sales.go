package handler

import (
	"net/http"

	"drugbee/internal/apierror"
	"drugbee/internal/dto"
	"drugbee/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Finalize godoc
// @Summary      Finalize a draft into a billed sale
// @Description  ACID: allocates the next bill number, freezes line pricing, deducts stock and writes the movement ledger in one transaction. Idempotent per draft — repeating the call returns the already-created sale.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        draft_id path string true "Draft UUID"
// @Success      201 {object} dto.SaleResponse
// @Failure      409 {object} apierror.APIError "stock changed under the draft"
// @Failure      422 {object} apierror.APIError "draft not billable"
// @Router       /v1/sales/finalize/{draft_id} [post]
func (h *SalesHandler) Finalize(c *gin.Context) {
	draftID, err := uuid.Parse(c.Param("draft_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid draft ID"))
		return
	}
	resp, err := h.svc.Finalize(c.Request.Context(), draftID)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Fetch a completed sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale ID"))
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List sales
// @Description  Paginated, filtered by date and status. Defaults to today's completed sales.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date   query string false "Date YYYY-MM-DD (default: today)"
// @Param        status query string false "completed | voided | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200    {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void godoc
// @Summary      Void a sale
// @Description  Restores the deducted stock and writes reversing ledger entries. The bill number is never reused.
// @Tags         sales
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string              true "Sale UUID"
// @Param        body body dto.VoidSaleRequest true "Void reason"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Void(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale ID"))
		return
	}
	var req dto.VoidSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.VoidSale(c.Request.Context(), id, req.Reason); err != nil {
		writeBillingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPaid godoc
// @Summary      Settle a credit sale
// @Tags         sales
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      204
// @Router       /v1/sales/{id}/pay [post]
func (h *SalesHandler) MarkPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale ID"))
		return
	}
	if err := h.svc.MarkPaid(c.Request.Context(), id); err != nil {
		writeBillingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reprint godoc
// @Summary      Re-render the invoice PDF
// @Tags         sales
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string             true "Sale UUID"
// @Param        body body dto.ReprintRequest true "Page format (default A4)"
// @Success      202
// @Router       /v1/sales/{id}/reprint [post]
func (h *SalesHandler) Reprint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale ID"))
		return
	}
	var req dto.ReprintRequest
	if !bindAndValidate(c, &req) {
		return
	}
	format := req.PageFormat
	if format == "" {
		format = "A4"
	}
	if err := h.svc.Reprint(c.Request.Context(), id, format); err != nil {
		writeBillingError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
