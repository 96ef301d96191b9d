package controllers

import (
	"net/http"
	"strings"

	"saif-gifts/identity"
	"saif-gifts/middleware"
	"saif-gifts/models"
	"saif-gifts/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

func cartOK(c *gin.Context, message string, view *models.CartView) {
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data:    view,
	})
}

// @Summary Get cart
// @Description Get the cart of the signed-in user or the guest
// @Tags Cart
// @Produce json
// @Param X-Guest-Id header string false "Guest id for clients without cookies"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.cartService.View(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, "Failed to retrieve cart", err)
		return
	}
	cartOK(c, "Cart retrieved", view)
}

// @Summary Add to cart
// @Description Add a product to the cart; quantity defaults to 1
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Item"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), middleware.Owner(c), req.ProductID, quantity)
	if err != nil {
		respondError(c, "Failed to add item", err)
		return
	}
	cartOK(c, "Item added to cart", view)
}

// @Summary Set quantity
// @Description Set the quantity of a cart line; 0 or less removes it
// @Tags Cart
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param request body models.SetQuantityRequest true "Quantity"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{productId} [patch]
func (ctrl *CartController) SetQuantity(c *gin.Context) {
	var req models.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	view, err := ctrl.cartService.SetQuantity(c.Request.Context(), middleware.Owner(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		respondError(c, "Failed to update quantity", err)
		return
	}
	cartOK(c, "Cart updated", view)
}

// @Summary Remove cart line
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{productId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	if err != nil {
		respondError(c, "Failed to remove item", err)
		return
	}
	cartOK(c, "Item removed", view)
}

// @Summary Increment quantity
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{productId}/increment [post]
func (ctrl *CartController) Increment(c *gin.Context) {
	view, err := ctrl.cartService.Increment(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	if err != nil {
		respondError(c, "Failed to update quantity", err)
		return
	}
	cartOK(c, "Cart updated", view)
}

// @Summary Decrement quantity
// @Description Lower the quantity by one; a line at 1 is removed
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{productId}/decrement [post]
func (ctrl *CartController) Decrement(c *gin.Context) {
	view, err := ctrl.cartService.Decrement(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	if err != nil {
		respondError(c, "Failed to update quantity", err)
		return
	}
	cartOK(c, "Cart updated", view)
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [delete]
func (ctrl *CartController) Clear(c *gin.Context) {
	view, err := ctrl.cartService.Clear(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		respondError(c, "Failed to clear cart", err)
		return
	}
	cartOK(c, "Cart cleared", view)
}

// @Summary Merge guest cart
// @Description Move a guest cart into the signed-in user's cart. The guest id
// @Description comes from the body, the guestId cookie or the X-Guest-Id header.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.MergeCartRequest false "Guest id"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/merge [post]
func (ctrl *CartController) Merge(c *gin.Context) {
	var req models.MergeCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request", err)
			return
		}
	}

	guestID := strings.TrimSpace(req.GuestID)
	if guestID == "" {
		guestID, _ = c.Cookie(identity.GuestStorageKey)
	}
	if guestID == "" {
		guestID = c.GetHeader(middleware.GuestHeader)
	}

	view, err := ctrl.cartService.Merge(c.Request.Context(), identity.OwnerKey(guestID), middleware.Owner(c))
	if err != nil {
		respondError(c, "Failed to merge cart", err)
		return
	}
	cartOK(c, "Cart merged", view)
}
