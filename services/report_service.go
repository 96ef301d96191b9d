package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"saif-gifts/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderRangeReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.OrderRecord, error)
}

type PurchasePriceReader interface {
	GetPurchasePrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

type ReportService struct {
	orders   OrderRangeReader
	products PurchasePriceReader
	now      func() time.Time
	log      *zap.Logger
}

func NewReportService(orders OrderRangeReader, products PurchasePriceReader, log *zap.Logger) *ReportService {
	return &ReportService{orders: orders, products: products, now: time.Now, log: log}
}

// ReportRange maps a range name to [from, to). Unknown names are rejected.
func ReportRange(name string, now time.Time) (time.Time, time.Time, error) {
	to := now.Add(time.Second)
	switch strings.ToLower(name) {
	case "week":
		return now.AddDate(0, 0, -7), to, nil
	case "", "month":
		return now.AddDate(0, -1, 0), to, nil
	case "year":
		return now.AddDate(-1, 0, 0), to, nil
	case "all":
		return time.Unix(0, 0).UTC(), to, nil
	}
	return time.Time{}, time.Time{}, models.NewValidationError("range", "must be week, month, year or all")
}

func (s *ReportService) SalesReport(ctx context.Context, rangeName string) (*models.SalesReport, error) {
	from, to, err := ReportRange(rangeName, s.now())
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	ids := map[string]struct{}{}
	for _, o := range orders {
		for _, li := range o.LineItems {
			ids[li.ProductID] = struct{}{}
		}
	}
	idList := make([]string, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	costs, err := s.products.GetPurchasePrices(ctx, idList)
	if err != nil {
		s.log.Warn("purchase prices unavailable, profit reported as revenue", zap.Error(err))
		costs = map[string]decimal.Decimal{}
	}

	return BuildSalesReport(orders, costs), nil
}

// BuildSalesReport aggregates per product name and per customer name. Lines
// or orders missing a name are skipped rather than failing the report.
func BuildSalesReport(orders []models.OrderRecord, costs map[string]decimal.Decimal) *models.SalesReport {
	products := map[string]*models.ProductStat{}
	customers := map[string]*models.CustomerStat{}
	report := &models.SalesReport{TotalRevenue: decimal.Zero}

	for _, o := range orders {
		report.OrderCount++
		report.TotalRevenue = report.TotalRevenue.Add(o.Total)

		for _, li := range o.LineItems {
			if li.Name == "" || li.Quantity < 1 {
				continue
			}
			stat, ok := products[li.Name]
			if !ok {
				stat = &models.ProductStat{Name: li.Name, Revenue: decimal.Zero, Profit: decimal.Zero}
				products[li.Name] = stat
			}
			qty := decimal.NewFromInt(int64(li.Quantity))
			stat.TotalSales++
			stat.Quantity += li.Quantity
			stat.Revenue = stat.Revenue.Add(li.UnitPrice.Mul(qty))
			stat.Profit = stat.Profit.Add(li.UnitPrice.Sub(costs[li.ProductID]).Mul(qty))
		}

		name := strings.TrimSpace(o.ShippingDetails.FullName)
		if name == "" {
			continue
		}
		c, ok := customers[name]
		if !ok {
			c = &models.CustomerStat{Name: name, TotalSpent: decimal.Zero}
			customers[name] = c
		}
		c.TotalOrders++
		c.TotalSpent = c.TotalSpent.Add(o.Total)
		c.AverageOrderValue = c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalOrders))).Round(2)
	}

	report.Products = make([]models.ProductStat, 0, len(products))
	for _, p := range products {
		report.Products = append(report.Products, *p)
	}
	sort.Slice(report.Products, func(i, j int) bool {
		if !report.Products[i].Revenue.Equal(report.Products[j].Revenue) {
			return report.Products[i].Revenue.GreaterThan(report.Products[j].Revenue)
		}
		return report.Products[i].Name < report.Products[j].Name
	})

	report.Customers = make([]models.CustomerStat, 0, len(customers))
	for _, c := range customers {
		report.Customers = append(report.Customers, *c)
	}
	sort.Slice(report.Customers, func(i, j int) bool {
		if !report.Customers[i].TotalSpent.Equal(report.Customers[j].TotalSpent) {
			return report.Customers[i].TotalSpent.GreaterThan(report.Customers[j].TotalSpent)
		}
		return report.Customers[i].Name < report.Customers[j].Name
	})
	return report
}
