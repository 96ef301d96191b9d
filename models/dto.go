package models

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	Name     string `json:"name" form:"name" binding:"required,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" form:"role" binding:"required,oneof=customer admin"`
}

type CreateProductRequest struct {
	Name          string `form:"name" binding:"required"`
	Description   string `form:"description"`
	Category      string `form:"category" binding:"required"`
	Price         string `form:"price" binding:"required"`
	PurchasePrice string `form:"purchase_price"`
	Stock         int    `form:"stock"`
	Code          string `form:"code"`
}

type UpdateProductRequest struct {
	Name          string `form:"name"`
	Description   string `form:"description"`
	Category      string `form:"category"`
	Price         string `form:"price"`
	PurchasePrice string `form:"purchase_price"`
	Stock         *int   `form:"stock"`
	Code          string `form:"code"`
	IsActive      *bool  `form:"is_active"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type MergeCartRequest struct {
	GuestID string `json:"guest_id"`
}

type ScanRequest struct {
	Code     string `json:"code" binding:"required"`
	Quantity int    `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}

type CartView struct {
	Owner          string          `json:"owner"`
	IsGuest        bool            `json:"is_guest"`
	Items          []CartLine      `json:"items"`
	TotalItemCount int             `json:"total_item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}
