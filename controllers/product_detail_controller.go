package controllers

import (
	"fmt"
	"net/http"

	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type ProductDetailController struct {
	productService *services.ProductService
}

func NewProductDetailController(productService *services.ProductService) *ProductDetailController {
	return &ProductDetailController{productService: productService}
}

// @Summary Get product
// @Description Get a single active product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductDetailController) GetProductDetail(c *gin.Context) {
	product, err := ctrl.productService.GetActiveProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Product not found", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product retrieved",
		Data:    product,
	})
}

// @Summary Product QR label
// @Description Render a PNG QR code encoding the product code, for POS scanning
// @Tags Admin Products
// @Security BearerAuth
// @Produce png
// @Param id path string true "Product ID"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/products/{id}/qrcode [get]
func (ctrl *ProductDetailController) GetQRCode(c *gin.Context) {
	png, err := ctrl.productService.QRCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to render QR code", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="product-%s.png"`, c.Param("id")))
	c.Data(http.StatusOK, "image/png", png)
}
