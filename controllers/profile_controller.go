package controllers

import (
	"net/http"

	"saif-gifts/middleware"
	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	authService *services.AuthService
}

func NewProfileController(authService *services.AuthService) *ProfileController {
	return &ProfileController{authService: authService}
}

// @Summary Get current user
// @Description Get the signed-in user's profile
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/me [get]
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	user, err := ctrl.authService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}
