package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PartHandler struct {
	partService service.PartService
}

func NewPartHandler(partService service.PartService) *PartHandler {
	return &PartHandler{partService: partService}
}

func (h *PartHandler) RegisterRoutes(router *gin.RouterGroup) {
	parts := router.Group("/api/parts")
	{
		parts.GET("", middleware.RequirePermission("parts.read"), h.ListParts)
		parts.GET("/:id", middleware.RequirePermission("parts.read"), h.GetPart)
		parts.POST("", middleware.RequirePermission("parts.write"), h.CreatePart)
		parts.PUT("/:id", middleware.RequirePermission("parts.write"), h.UpdatePart)
		parts.DELETE("/:id", middleware.RequirePermission("parts.delete"), h.DeletePart)
	}
}

// ListParts returns paginated catalog entries with optional search
// @Summary      List parts
// @Tags         parts
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search by name or category"
// @Param        active  query     bool    false  "Only active parts"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]service.PartResponse}
// @Failure      500     {object}  response.Response
// @Router       /api/parts [get]
func (h *PartHandler) ListParts(c *gin.Context) {
	p := pagination.Parse(c)
	activeOnly := c.Query("active") == "true"

	parts, total, err := h.partService.ListParts(c.Request.Context(), c.Query("search"), activeOnly, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, parts, p.Page, p.Limit, total))
}

// GetPart returns one catalog entry
// @Summary      Get part
// @Tags         parts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Part ID"
// @Success      200  {object}  response.Response{data=service.PartResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/parts/{id} [get]
func (h *PartHandler) GetPart(c *gin.Context) {
	part, err := h.partService.GetPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, part))
}

// CreatePart creates a catalog entry
// @Summary      Create part
// @Tags         parts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePartRequest  true  "Part payload"
// @Success      201      {object}  response.Response{data=service.PartResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/parts [post]
func (h *PartHandler) CreatePart(c *gin.Context) {
	var req service.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	part, err := h.partService.CreatePart(c.Request.Context(), callerID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, part))
}

// UpdatePart updates a catalog entry
// @Summary      Update part
// @Tags         parts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Part ID"
// @Param        payload  body      service.UpdatePartRequest  true  "Update payload"
// @Success      200      {object}  response.Response{data=service.PartResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/parts/{id} [put]
func (h *PartHandler) UpdatePart(c *gin.Context) {
	var req service.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	part, err := h.partService.UpdatePart(c.Request.Context(), callerID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, part))
}

// DeletePart removes a catalog entry (soft delete)
// @Summary      Delete part
// @Tags         parts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Part ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/parts/{id} [delete]
func (h *PartHandler) DeletePart(c *gin.Context) {
	if err := h.partService.DeletePart(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Part deleted successfully"}))
}
