package controllers

import (
	"net/http"

	"saif-gifts/middleware"
	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type TransactionController struct {
	checkoutService *services.CheckoutService
}

func NewTransactionController(checkoutService *services.CheckoutService) *TransactionController {
	return &TransactionController{checkoutService: checkoutService}
}

func checkoutResponse(p *models.Placement) models.CheckoutResponse {
	resp := models.CheckoutResponse{Order: p.Snapshot, Synced: p.Synced}
	if p.SyncErr != nil {
		resp.Warning = "Order placed but not yet saved to your account. Retry with POST /orders/current/sync."
	}
	return resp
}

// @Summary Checkout
// @Description Place an order from the current cart. Guests can check out;
// @Description signed-in users also get the order saved to their history.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body models.ShippingDetails true "Shipping details"
// @Success 201 {object} models.Response{data=models.CheckoutResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *TransactionController) Checkout(c *gin.Context) {
	var details models.ShippingDetails
	if err := c.ShouldBind(&details); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	placement, err := ctrl.checkoutService.PlaceOrder(c.Request.Context(), middleware.Owner(c), details)
	if err != nil {
		respondError(c, "Checkout failed", err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order placed successfully",
		Data:    checkoutResponse(placement),
	})
}

// @Summary Retry order sync
// @Description Save the current order to the account history again
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CheckoutResponse}
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/current/sync [post]
func (ctrl *TransactionController) RetrySync(c *gin.Context) {
	placement, err := ctrl.checkoutService.RetrySync(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, "Sync failed", err)
		return
	}

	if placement.SyncErr != nil {
		respondError(c, "Order could not be saved to your account", placement.SyncErr)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order saved to your account",
		Data:    checkoutResponse(placement),
	})
}
