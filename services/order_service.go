package services

import (
	"context"
	"math"
	"slices"

	"saif-gifts/identity"
	"saif-gifts/models"

	"go.uber.org/zap"
)

type OrderStore interface {
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.OrderRecord, int, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]models.OrderRecord, int, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// OrderService serves account order history and the admin order list.
type OrderService struct {
	orders OrderStore
	log    *zap.Logger
}

func NewOrderService(orders OrderStore, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, log: log}
}

func (s *OrderService) GetHistory(ctx context.Context, owner identity.OwnerKey, page, limit int) (*models.PaginationResponse, error) {
	if owner.IsGuest() {
		return nil, models.NewValidationError("owner", "sign in to see order history")
	}
	page, limit = normalizePage(page, limit)

	orders, total, err := s.orders.ListByUser(ctx, owner.String(), page, limit)
	if err != nil {
		return nil, err
	}
	return paginated("Order history retrieved successfully", orders, page, limit, total), nil
}

func (s *OrderService) GetAllOrders(ctx context.Context, status string, page, limit int) (*models.PaginationResponse, error) {
	if status != "" && !slices.Contains(models.OrderStatuses, status) {
		return nil, models.NewValidationError("status", "unknown order status")
	}
	page, limit = normalizePage(page, limit)

	orders, total, err := s.orders.ListAll(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}
	return paginated("Orders retrieved successfully", orders, page, limit, total), nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if !slices.Contains(models.OrderStatuses, status) {
		return models.NewValidationError("status", "unknown order status")
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	s.log.Info("order status updated", zap.String("order_id", orderID), zap.String("status", status))
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func paginated(message string, data interface{}, page, limit, total int) *models.PaginationResponse {
	return &models.PaginationResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}
}
