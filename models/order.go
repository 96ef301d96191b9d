package models

import (
	"time"

	"saif-gifts/cart"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type ShippingDetails struct {
	FullName   string `json:"full_name" form:"full_name"`
	Email      string `json:"email" form:"email"`
	Phone      string `json:"phone" form:"phone"`
	Address    string `json:"address" form:"address"`
	City       string `json:"city" form:"city"`
	PostalCode string `json:"postal_code" form:"postal_code"`
}

// OrderSnapshot is the immutable record of a checkout. Totals are computed
// once when the snapshot is taken and stored rounded to 2 decimals.
type OrderSnapshot struct {
	OrderID         string          `json:"order_id"`
	OrderDate       time.Time       `json:"order_date"`
	Owner           string          `json:"owner"`
	ShippingDetails ShippingDetails `json:"shipping_details"`
	LineItems       []cart.LineItem `json:"line_items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
}

// OrderRecord is an order as stored against an account.
type OrderRecord struct {
	ID int `json:"id"`
	OrderSnapshot
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Placement is the outcome of a checkout. The snapshot is always recorded
// locally; SyncErr reports a failed save to the account order history.
type Placement struct {
	Snapshot *OrderSnapshot `json:"order"`
	Synced   bool           `json:"synced"`
	SyncErr  error          `json:"-"`
}
