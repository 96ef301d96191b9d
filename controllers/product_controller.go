package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

func priceParam(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.NewValidationError(key, "must be a number")
	}
	return &d, nil
}

// imageFile returns the optional "image" upload.
func imageFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return file, err
}

// @Summary Get all products
// @Description Get paginated list of active products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(12)
// @Param category query string false "Filter by category"
// @Param search query string false "Search by product name"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Success 200 {object} models.PaginationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, limit := pageParams(c, 12)
	filter := models.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		Limit:    limit,
	}

	var err error
	if filter.MinPrice, err = priceParam(c, "min_price"); err != nil {
		respondError(c, "Invalid filter", err)
		return
	}
	if filter.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		respondError(c, "Invalid filter", err)
		return
	}

	result, err := ctrl.productService.GetAllProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to retrieve products", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Create product
// @Description Create a product with an optional image
// @Tags Admin Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string false "Description"
// @Param category formData string true "Category"
// @Param price formData string true "Price"
// @Param purchase_price formData string false "Purchase price"
// @Param stock formData int false "Stock"
// @Param code formData string false "Product code"
// @Param image formData file false "Product image"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	image, err := imageFile(c)
	if err != nil {
		badRequest(c, "Invalid image upload", err)
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, "Failed to create product", err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// @Summary Update product
// @Description Update product fields; omitted fields are left unchanged
// @Tags Admin Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param name formData string false "Name"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Param price formData string false "Price"
// @Param purchase_price formData string false "Purchase price"
// @Param stock formData int false "Stock"
// @Param code formData string false "Product code"
// @Param is_active formData bool false "Listed in the catalog"
// @Param image formData file false "Product image"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	image, err := imageFile(c)
	if err != nil {
		badRequest(c, "Invalid image upload", err)
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		respondError(c, "Failed to update product", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// @Summary Delete product
// @Description Remove a product from the catalog
// @Tags Admin Products
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	if err := ctrl.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete product", err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}
