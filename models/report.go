package models

import "github.com/shopspring/decimal"

type ProductStat struct {
	Name       string          `json:"name"`
	TotalSales int             `json:"total_sales"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
	Profit     decimal.Decimal `json:"profit"`
}

type CustomerStat struct {
	Name              string          `json:"name"`
	TotalOrders       int             `json:"total_orders"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type SalesReport struct {
	Products     []ProductStat   `json:"products"`
	Customers    []CustomerStat  `json:"customers"`
	OrderCount   int             `json:"order_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
