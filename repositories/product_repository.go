package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saif-gifts/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, category, price, purchase_price, stock,
	COALESCE(code, ''), image_id, is_active, created_at, updated_at`

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.PurchasePrice, &p.Stock,
		&p.Code, &p.ImageID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT category, COUNT(*) FROM products
	          WHERE is_active = true AND category <> ''
	          GROUP BY category ORDER BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.Name, &cat.ProductCount); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	query := `
		INSERT INTO products (id, name, description, category, price, purchase_price, stock, code, image_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, true, $10, $10)
		RETURNING is_active, created_at, updated_at
	`
	now := time.Now()
	return r.db.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Price,
		product.PurchasePrice, product.Stock, product.Code, product.ImageID, now,
	).Scan(&product.IsActive, &product.CreatedAt, &product.UpdatedAt)
}

// GetAllProducts lists active products matching filter, newest first, and the
// total number of matches for pagination.
func (r *ProductRepository) GetAllProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	where, args := productWhere(filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func productWhere(filter models.ProductFilter) (string, []any) {
	conds := []string{"is_active = true"}
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("product", id)
	}
	return p, err
}

// GetProductByCode looks up an active product by its POS barcode.
func (r *ProductRepository) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1 AND is_active = true`
	p, err := scanProduct(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("product", code)
	}
	return p, err
}

// GetPurchasePrices returns the purchase price of each listed product that
// still exists, including inactive ones.
func (r *ProductRepository) GetPurchasePrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, purchase_price FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, category = $3, price = $4,
	          purchase_price = $5, stock = $6, code = NULLIF($7, ''), image_id = $8, is_active = $9, updated_at = $10
	          WHERE id = $11
	          RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Category, product.Price, product.PurchasePrice,
		product.Stock, product.Code, product.ImageID, product.IsActive, time.Now(), product.ID,
	).Scan(&product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFoundError("product", product.ID)
	}
	return err
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	query := `UPDATE products SET is_active = false, updated_at = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("product", id)
	}
	return nil
}
