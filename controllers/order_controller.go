package controllers

import (
	"net/http"
	"strings"

	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// @Summary Get all orders
// @Description Get all orders with pagination and an optional status filter
// @Tags Admin Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status" Enums(pending, confirmed, shipped, delivered, cancelled)
// @Success 200 {object} models.PaginationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := pageParams(c, 10)
	status := strings.TrimSpace(c.Query("status"))

	result, err := ctrl.orderService.GetAllOrders(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, "Failed to retrieve orders", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Update order status
// @Tags Admin Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	if err := ctrl.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, "Failed to update order status", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order status updated successfully",
	})
}
