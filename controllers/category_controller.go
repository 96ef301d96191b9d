package controllers

import (
	"net/http"

	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	productService *services.ProductService
}

func NewCategoryController(productService *services.ProductService) *CategoryController {
	return &CategoryController{productService: productService}
}

// @Summary Get all categories
// @Description Get the categories of active products with their product counts
// @Tags Categories
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Router /categories [get]
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	categories, err := ctrl.productService.GetAllCategories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to retrieve categories", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Categories retrieved",
		Data:    categories,
	})
}
