package controllers

import (
	"net/http"
	"strconv"

	"saif-gifts/middleware"
	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// @Summary Get all users
// @Tags Admin Users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginationResponse
// @Router /admin/users [get]
func (ctrl *UserController) GetAllUsers(c *gin.Context) {
	page, limit := pageParams(c, 10)

	result, err := ctrl.userService.GetAllUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, "Failed to retrieve users", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Update user role
// @Tags Admin Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body models.UpdateRoleRequest true "Role"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (ctrl *UserController) UpdateRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid user ID", err)
		return
	}

	var req models.UpdateRoleRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	if err := ctrl.userService.UpdateRole(c.Request.Context(), middleware.UserID(c), id, req.Role); err != nil {
		respondError(c, "Failed to update role", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "User role updated successfully",
	})
}
