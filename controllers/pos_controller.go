package controllers

import (
	"net/http"

	"saif-gifts/middleware"
	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type POSController struct {
	posService *services.POSService
}

func NewPOSController(posService *services.POSService) *POSController {
	return &POSController{posService: posService}
}

// @Summary Scan product code
// @Description Add the scanned product to the cashier's cart
// @Tags Admin POS
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ScanRequest true "Scanned code"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/pos/scan [post]
func (ctrl *POSController) Scan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	product, view, err := ctrl.posService.Scan(c.Request.Context(), middleware.Owner(c), req.Code, req.Quantity)
	if err != nil {
		respondError(c, "Scan failed", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: product.Name + " added to cart",
		Data:    view,
	})
}
