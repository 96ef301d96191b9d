package services

import (
	"context"

	"saif-gifts/identity"
	"saif-gifts/models"

	"go.uber.org/zap"
)

type ProductCodeLookup interface {
	GetProductByCode(ctx context.Context, code string) (*models.Product, error)
}

// POSService adds scanned products to the cashier's own cart.
type POSService struct {
	products ProductCodeLookup
	carts    *CartService
	log      *zap.Logger
}

func NewPOSService(products ProductCodeLookup, carts *CartService, log *zap.Logger) *POSService {
	return &POSService{products: products, carts: carts, log: log}
}

// Scan looks code up and adds quantity of it to owner's cart. Quantities
// below 1 are raised to 1.
func (s *POSService) Scan(ctx context.Context, owner identity.OwnerKey, code string, quantity int) (*models.Product, *models.CartView, error) {
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.products.GetProductByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.carts.AddProduct(ctx, owner, product, quantity)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("pos scan",
		zap.String("owner", owner.String()),
		zap.String("code", code),
		zap.String("product_id", product.ID),
		zap.Int("quantity", quantity))
	return product, view, nil
}
