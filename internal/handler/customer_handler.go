package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService service.CustomerService
	vehicleService  service.VehicleService
}

func NewCustomerHandler(customerService service.CustomerService, vehicleService service.VehicleService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, vehicleService: vehicleService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.GET("", middleware.RequirePermission("customers.read"), h.ListCustomers)
		customers.GET("/:id", middleware.RequirePermission("customers.read"), h.GetCustomer)
		customers.GET("/:id/vehicles", middleware.RequirePermission("vehicles.read"), h.ListCustomerVehicles)
		customers.POST("", middleware.RequirePermission("customers.write"), h.CreateCustomer)
		customers.PUT("/:id", middleware.RequirePermission("customers.write"), h.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequirePermission("customers.delete"), h.DeleteCustomer)
	}
}

// ListCustomers returns paginated customers with optional search
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search by name, phone, email"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]service.CustomerResponse}
// @Failure      500     {object}  response.Response
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, customers, p.Page, p.Limit, total))
}

// GetCustomer returns one customer with their vehicles
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.CustomerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// ListCustomerVehicles returns all vehicles owned by a customer
// @Summary      List customer vehicles
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=[]service.VehicleResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/customers/{id}/vehicles [get]
func (h *CustomerHandler) ListCustomerVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicles))
}

// CreateCustomer creates a new customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerRequest  true  "Customer payload"
// @Success      201      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), callerID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// UpdateCustomer updates an existing customer
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), callerID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer removes a customer (soft delete)
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Customer deleted successfully"}))
}
