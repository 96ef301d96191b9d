package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strings"

	"saif-gifts/libs"
	"saif-gifts/models"
	"saif-gifts/repositories"
	"saif-gifts/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var errImagesDisabled = errors.New("image storage is not configured")

type ProductStore interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetAllProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProductByCode(ctx context.Context, code string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

// ImageStore holds product images and hands out preview URLs for them.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, name string) (string, error)
	PreviewURL(fileID string) (string, error)
	Delete(ctx context.Context, fileID string) error
}

type ProductService struct {
	repo          ProductStore
	cache         ProductCache
	images        ImageStore
	maxUploadSize int64
	sfg           singleflight.Group
	log           *zap.Logger
}

func NewProductService(repo ProductStore, cache ProductCache, images ImageStore, maxUploadSize int64, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:          repo,
		cache:         cache,
		images:        images,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

func (s *ProductService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAllCategories(ctx)
}

func (s *ProductService) GetAllProducts(ctx context.Context, filter models.ProductFilter) (*models.PaginationResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 12
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, models.NewValidationError("min_price", "must not exceed max_price")
	}

	products, total, err := s.repo.GetAllProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.withImageURL(&products[i])
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return &models.PaginationResponse{
		Success: true,
		Message: "Products retrieved successfully",
		Data:    products,
		Meta: models.MetaData{
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetProductByID reads through the cache. Concurrent misses for one id share
// a single database query.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.log.Warn("product cache get failed", zap.String("product_id", id), zap.Error(err))
		}

		p, err = s.repo.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.withImageURL(p)
		if err := s.cache.Set(ctx, p); err != nil {
			s.log.Warn("product cache set failed", zap.String("product_id", id), zap.Error(err))
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	// Copy: the singleflight value is shared between callers.
	p := *v.(*models.Product)
	return &p, nil
}

// GetActiveProduct is GetProductByID restricted to products still for sale.
func (s *ProductService) GetActiveProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, models.NewNotFoundError("product", id)
	}
	return p, nil
}

func (s *ProductService) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, models.NewValidationError("code", "is required")
	}
	p, err := s.repo.GetProductByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.withImageURL(p)
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest, image *multipart.FileHeader) (*models.Product, error) {
	price, err := parseMoney("price", req.Price)
	if err != nil {
		return nil, err
	}
	purchasePrice := decimal.Zero
	if req.PurchasePrice != "" {
		if purchasePrice, err = parseMoney("purchase_price", req.PurchasePrice); err != nil {
			return nil, err
		}
	}
	if req.Stock < 0 {
		return nil, models.NewValidationError("stock", "must not be negative")
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Category:      strings.TrimSpace(req.Category),
		Price:         price,
		PurchasePrice: purchasePrice,
		Stock:         req.Stock,
		Code:          strings.TrimSpace(req.Code),
		IsActive:      true,
	}

	if image != nil {
		if product.ImageID, err = s.uploadImage(ctx, image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		s.discardImage(product.ImageID)
		return nil, err
	}
	s.withImageURL(product)
	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest, image *multipart.FileHeader) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Category != "" {
		product.Category = strings.TrimSpace(req.Category)
	}
	if req.Price != "" {
		if product.Price, err = parseMoney("price", req.Price); err != nil {
			return nil, err
		}
	}
	if req.PurchasePrice != "" {
		if product.PurchasePrice, err = parseMoney("purchase_price", req.PurchasePrice); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, models.NewValidationError("stock", "must not be negative")
		}
		product.Stock = *req.Stock
	}
	if req.Code != "" {
		product.Code = strings.TrimSpace(req.Code)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	oldImage := product.ImageID
	if image != nil {
		if product.ImageID, err = s.uploadImage(ctx, image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if product.ImageID != oldImage {
			s.discardImage(product.ImageID)
		}
		return nil, err
	}
	if product.ImageID != oldImage {
		s.discardImage(oldImage)
	}
	s.invalidate(ctx, id)
	s.withImageURL(product)
	return product, nil
}

// DeleteProduct hides the product from the catalog. Carts that already hold
// it keep their line.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) QRCode(ctx context.Context, id string) ([]byte, error) {
	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Code == "" {
		return nil, models.NewValidationError("code", "product has no code to encode")
	}
	return libs.ProductQRCode(p.Code)
}

func (s *ProductService) uploadImage(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImage(header, s.maxUploadSize); err != nil {
		return "", err
	}
	if s.images == nil {
		return "", models.NewCollaboratorError("upload image", errImagesDisabled)
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	id, err := s.images.Upload(ctx, file, utils.SanitizeFilename(header.Filename))
	if err != nil {
		return "", models.NewCollaboratorError("upload image", err)
	}
	return id, nil
}

func (s *ProductService) discardImage(fileID string) {
	if fileID == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(context.Background(), fileID); err != nil {
		s.log.Warn("orphaned product image", zap.String("image_id", fileID), zap.Error(err))
	}
}

func (s *ProductService) withImageURL(p *models.Product) {
	if p.ImageID == "" || s.images == nil {
		return
	}
	url, err := s.images.PreviewURL(p.ImageID)
	if err != nil {
		s.log.Warn("preview url failed", zap.String("image_id", p.ImageID), zap.Error(err))
		return
	}
	p.ImageURL = url
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("product cache delete failed", zap.String("product_id", id), zap.Error(err))
	}
}

func parseMoney(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, models.NewValidationError(field, "must be a number")
	}
	if d.IsNegative() {
		return decimal.Zero, models.NewValidationError(field, "must not be negative")
	}
	return d.Round(2), nil
}
