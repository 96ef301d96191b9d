package controllers

import (
	"net/http"

	"saif-gifts/middleware"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	orderService *services.OrderService
}

func NewHistoryController(orderService *services.OrderService) *HistoryController {
	return &HistoryController{orderService: orderService}
}

// @Summary Get order history
// @Description Get the signed-in user's orders, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginationResponse
// @Router /orders [get]
func (ctrl *HistoryController) GetHistory(c *gin.Context) {
	page, limit := pageParams(c, 10)

	result, err := ctrl.orderService.GetHistory(c.Request.Context(), middleware.Owner(c), page, limit)
	if err != nil {
		respondError(c, "Failed to retrieve order history", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
