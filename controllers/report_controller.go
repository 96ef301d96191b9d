package controllers

import (
	"net/http"

	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	reportService *services.ReportService
}

func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// @Summary Sales report
// @Description Revenue and profit per product and spend per customer
// @Tags Admin Reports
// @Security BearerAuth
// @Produce json
// @Param range query string false "Time range" Enums(week, month, year, all) default(month)
// @Success 200 {object} models.Response{data=models.SalesReport}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/reports/sales [get]
func (ctrl *ReportController) SalesReport(c *gin.Context) {
	report, err := ctrl.reportService.SalesReport(c.Request.Context(), c.Query("range"))
	if err != nil {
		respondError(c, "Failed to build sales report", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Sales report generated",
		Data:    report,
	})
}
