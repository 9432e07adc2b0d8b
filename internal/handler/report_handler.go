package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/reports/summary", middleware.RequirePermission("reports.read"), h.GetSummary)
}

// GetSummary returns dashboard aggregates over a date range.
// Defaults to the last 30 days when no range is given.
// @Summary      Shop activity summary
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=service.ReportSummary}
// @Failure      400         {object}  response.Response
// @Failure      500         {object}  response.Response
// @Router       /api/reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD"))
			return
		}
		startDate = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD"))
			return
		}
		// include the whole end day
		endDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "end_date must not be before start_date"))
		return
	}

	summary, err := h.reportService.GetSummary(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
