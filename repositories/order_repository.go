package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"saif-gifts/cart"
	"saif-gifts/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, order_id, user_id, status, shipping_details, line_items,
	subtotal, tax, total, order_date, created_at, updated_at`

// ErrOrderIDConflict means an order id is already stored for another user.
var ErrOrderIDConflict = errors.New("order id already used by another account")

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// scanOrder decodes the JSON columns leniently: rows written by older clients
// keep their totals even when the item or address payload is unreadable.
func scanOrder(row pgx.Row) (*models.OrderRecord, error) {
	var o models.OrderRecord
	var shipping, items []byte
	err := row.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.Status, &shipping, &items,
		&o.Subtotal, &o.Tax, &o.Total, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Owner = o.UserID
	if err := json.Unmarshal(shipping, &o.ShippingDetails); err != nil {
		o.ShippingDetails = models.ShippingDetails{}
	}
	if stored, err := decodeStoredCart(items); err == nil {
		o.LineItems = stored.Items
	}
	if o.LineItems == nil {
		o.LineItems = []cart.LineItem{}
	}
	return &o, nil
}

// CreateOrder stores the snapshot against userID. Storing the same order id
// twice is a no-op, so a retried sync never duplicates an order.
func (r *OrderRepository) CreateOrder(ctx context.Context, userID string, snapshot *models.OrderSnapshot) error {
	query := `
		INSERT INTO orders (order_id, user_id, status, shipping_details, line_items,
		                    subtotal, tax, total, order_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (order_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		snapshot.OrderID, userID, models.OrderStatusPending, snapshot.ShippingDetails, snapshot.LineItems,
		snapshot.Subtotal, snapshot.Tax, snapshot.Total, snapshot.OrderDate, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", snapshot.OrderID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	existing, err := r.GetByOrderID(ctx, snapshot.OrderID)
	if err != nil {
		return fmt.Errorf("check existing order %s: %w", snapshot.OrderID, err)
	}
	if existing.UserID != userID {
		return fmt.Errorf("%w: %s", ErrOrderIDConflict, snapshot.OrderID)
	}
	return nil
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OrderRecord, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("order", orderID)
	}
	return o, err
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.OrderRecord, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1
	          ORDER BY order_date DESC LIMIT $2 OFFSET $3`
	orders, err := r.list(ctx, query, userID, limit, (page-1)*limit)
	return orders, total, err
}

// ListAll returns every order, optionally narrowed to one status.
func (r *OrderRepository) ListAll(ctx context.Context, status string, page, limit int) ([]models.OrderRecord, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ($1 = '' OR status = $1)
	          ORDER BY order_date DESC LIMIT $2 OFFSET $3`
	orders, err := r.list(ctx, query, status, limit, (page-1)*limit)
	return orders, total, err
}

// ListBetween returns non-cancelled orders placed in [from, to).
func (r *OrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE order_date >= $1 AND order_date < $2 AND status <> $3
	          ORDER BY order_date`
	return r.list(ctx, query, from, to, models.OrderStatusCancelled)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]models.OrderRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.OrderRecord{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE order_id = $3`
	tag, err := r.db.Exec(ctx, query, status, time.Now(), orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("order", orderID)
	}
	return nil
}
