package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto an HTTP status. Internal errors are
// recorded on the context for the request logger and not echoed back.
func respondError(c *gin.Context, message string, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	detail := ""
	switch {
	case models.IsValidation(err):
		status, detail = http.StatusBadRequest, err.Error()
	case models.IsNotFound(err):
		status, detail = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status, detail = http.StatusUnauthorized, err.Error()
	case services.IsStaleWrite(err):
		status, detail = http.StatusConflict, "cart was changed by another request, reload and retry"
	case models.IsCollaborator(err):
		status, detail = http.StatusBadGateway, err.Error()
	}

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	return page, limit
}
