package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", middleware.RequirePermission("invoices.read"), h.ListInvoices)
		invoices.GET("/last", middleware.RequirePermission("invoices.read"), h.LastInvoiceForVehicle)
		invoices.GET("/:id", middleware.RequirePermission("invoices.read"), h.GetInvoice)
		invoices.GET("/:id/print", middleware.RequirePermission("invoices.read"), h.PrintInvoice)
		invoices.POST("", middleware.RequirePermission("invoices.write"), h.CreateInvoice)
		invoices.PUT("/:id", middleware.RequirePermission("invoices.write"), h.UpdateInvoice)
		invoices.DELETE("/:id", middleware.RequirePermission("invoices.delete"), h.DeleteInvoice)
	}
}

// callerID extracts the authenticated user id set by the auth middleware
func callerID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)
	return idStr
}

// CreateInvoice creates a new invoice with its line items
// @Summary      Create invoice
// @Description  Persists the invoice header and items atomically; item amounts and invoice totals are computed server-side
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), callerID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// GetInvoice returns one invoice with its items
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// ListInvoices returns a paginated invoice list with optional filters
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        vehicle_id   query     string  false  "Filter by vehicle"
// @Param        status       query     string  false  "Filter by payment status (paid, unpaid, partial, pending)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=[]service.InvoiceResponse}
// @Failure      500          {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.InvoiceFilter{
		CustomerID:    c.Query("customer_id"),
		VehicleID:     c.Query("vehicle_id"),
		PaymentStatus: c.Query("status"),
		Page:          p.Page,
		Limit:         p.Limit,
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, invoices, p.Page, p.Limit, total))
}

// UpdateInvoice replaces the invoice header fields and the full item set
// @Summary      Update invoice
// @Description  Replaces the item set wholesale and recomputes all totals
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.CreateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), callerID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice removes an invoice and its items
// @Summary      Delete invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Invoice deleted successfully"}))
}

// LastInvoiceForVehicle returns the most recent invoice for a vehicle
// @Summary      Last invoice for vehicle
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        vehicle_id  query     string  true  "Vehicle ID"
// @Success      200         {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404         {object}  response.Response
// @Router       /api/invoices/last [get]
func (h *InvoiceHandler) LastInvoiceForVehicle(c *gin.Context) {
	vehicleID := c.Query("vehicle_id")
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "vehicle_id query parameter is required"))
		return
	}

	invoice, err := h.invoiceService.LastInvoiceForVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// PrintInvoice returns the expanded print document for an invoice
// @Summary      Print invoice
// @Description  Returns the invoice with customer and vehicle expanded for rendering
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoicePrintDocument}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/print [get]
func (h *InvoiceHandler) PrintInvoice(c *gin.Context) {
	doc, err := h.invoiceService.PrintInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}
