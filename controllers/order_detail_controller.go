package controllers

import (
	"fmt"
	"net/http"

	"saif-gifts/libs"
	"saif-gifts/middleware"
	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type OrderDetailController struct {
	checkoutService *services.CheckoutService
}

func NewOrderDetailController(checkoutService *services.CheckoutService) *OrderDetailController {
	return &OrderDetailController{checkoutService: checkoutService}
}

// @Summary Current order
// @Description Get the most recent order placed by this user or guest
// @Tags Orders
// @Produce json
// @Success 200 {object} models.Response{data=models.OrderSnapshot}
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/current [get]
func (ctrl *OrderDetailController) GetCurrentOrder(c *gin.Context) {
	order, err := ctrl.checkoutService.CurrentOrder(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, "No current order", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order retrieved",
		Data:    order,
	})
}

// @Summary Download invoice
// @Description Download the current order's invoice as a PDF
// @Tags Orders
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/current/invoice [get]
func (ctrl *OrderDetailController) DownloadInvoice(c *gin.Context) {
	order, pdf, err := ctrl.checkoutService.Invoice(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, "Invoice unavailable", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, libs.InvoiceFilename(order.OrderID)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
