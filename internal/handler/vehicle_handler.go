package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/api/vehicles")
	{
		vehicles.GET("", middleware.RequirePermission("vehicles.read"), h.ListVehicles)
		vehicles.GET("/:id", middleware.RequirePermission("vehicles.read"), h.GetVehicle)
		vehicles.POST("", middleware.RequirePermission("vehicles.write"), h.CreateVehicle)
		vehicles.PUT("/:id", middleware.RequirePermission("vehicles.write"), h.UpdateVehicle)
		vehicles.DELETE("/:id", middleware.RequirePermission("vehicles.delete"), h.DeleteVehicle)
	}
}

// ListVehicles returns paginated vehicles with optional search
// @Summary      List vehicles
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search by registration, make, model"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]service.VehicleResponse}
// @Failure      500     {object}  response.Response
// @Router       /api/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	p := pagination.Parse(c)

	vehicles, total, err := h.vehicleService.ListVehicles(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, vehicles, p.Page, p.Limit, total))
}

// GetVehicle returns one vehicle
// @Summary      Get vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// CreateVehicle registers a vehicle for a customer
// @Summary      Create vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateVehicleRequest  true  "Vehicle payload"
// @Success      201      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vehicle))
}

// UpdateVehicle updates an existing vehicle
// @Summary      Update vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Vehicle ID"
// @Param        payload  body      service.UpdateVehicleRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// DeleteVehicle removes a vehicle (soft delete)
// @Summary      Delete vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/vehicles/{id} [delete]
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"}))
}
