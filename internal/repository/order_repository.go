package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

// CancelledStatusID is the seeded id of the "cancelled" order status.
const CancelledStatusID = 5

// PendingStatusID is the seeded id every new order starts in.
const PendingStatusID = 1

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepo{db: db}
}

// Place persists one order row and its line items atomically. Item prices
// are stored exactly as supplied: an order's value must survive later
// catalog price edits, so nothing here re-reads the catalog.
func (r *orderRepo) Place(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if order == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if err := validate.Struct(order); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", ErrInvalidInput)
	}
	for _, item := range items {
		if err := validate.Struct(item); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: item price cannot be negative", ErrInvalidInput)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	defer tx.Rollback(ctx)

	insertOrder := `
		INSERT INTO orders (
			user_id,
			customer_name,
			customer_phone,
			customer_address,
			total_amount,
			shipping_cost,
			status_id,
			order_date
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING order_id
	`

	order.StatusID = PendingStatusID
	order.OrderDate = time.Now()

	err = tx.QueryRow(ctx, insertOrder,
		order.UserID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.TotalAmount,
		order.ShippingCost,
		order.StatusID,
		order.OrderDate,
	).Scan(&order.OrderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	insertItem := `
		INSERT INTO order_items (order_id, variant_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`
	for _, item := range items {
		if _, err := tx.Exec(ctx, insertItem, order.OrderID, item.VariantID, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("%w: %v", ErrTransaction, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	return nil
}

func (r *orderRepo) List(ctx context.Context) ([]models.OrderSummary, error) {
	sql := `
		SELECT
			o.order_id,
			o.total_amount,
			os.status_name,
			o.order_date,
			o.customer_name,
			o.customer_phone,
			o.customer_address,
			o.shipping_cost,
			u.username,
			u.email,
			string_agg(p.name || ' (' || pv.color_name || ') (x' || oi.quantity || ')', '; ') AS products_summary
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.user_id
		LEFT JOIN order_items oi ON o.order_id = oi.order_id
		LEFT JOIN product_variants pv ON oi.variant_id = pv.variant_id
		LEFT JOIN products p ON pv.product_id = p.product_id
		JOIN order_statuses os ON o.status_id = os.status_id
		GROUP BY o.order_id, os.status_name, u.username, u.email
		ORDER BY o.order_date DESC
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderSummary
	for rows.Next() {
		var o models.OrderSummary
		err := rows.Scan(
			&o.OrderID,
			&o.TotalAmount,
			&o.Status,
			&o.OrderDate,
			&o.CustomerName,
			&o.CustomerPhone,
			&o.CustomerAddress,
			&o.ShippingCost,
			&o.UserUsername,
			&o.UserEmail,
			&o.ProductsSummary,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return orders, nil
}

func (r *orderRepo) GetWithItems(ctx context.Context, id int) (*models.OrderDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	orderSQL := `
		SELECT
			o.order_id,
			o.user_id,
			o.customer_name,
			o.customer_phone,
			o.customer_address,
			o.total_amount,
			o.shipping_cost,
			o.status_id,
			os.status_name,
			o.order_date,
			u.username,
			u.email
		FROM orders o
		JOIN order_statuses os ON o.status_id = os.status_id
		LEFT JOIN users u ON o.user_id = u.user_id
		WHERE o.order_id = $1
	`

	var detail models.OrderDetail
	err := r.db.QueryRow(ctx, orderSQL, id).Scan(
		&detail.OrderID,
		&detail.UserID,
		&detail.CustomerName,
		&detail.CustomerPhone,
		&detail.CustomerAddress,
		&detail.TotalAmount,
		&detail.ShippingCost,
		&detail.StatusID,
		&detail.Status,
		&detail.OrderDate,
		&detail.UserUsername,
		&detail.UserEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	itemsSQL := `
		SELECT
			oi.quantity,
			oi.price,
			p.name,
			pv.color,
			pv.color_name,
			COALESCE(
				(SELECT image_url FROM product_images WHERE product_id = p.product_id AND is_primary = TRUE LIMIT 1),
				(SELECT image_url FROM product_images WHERE product_id = p.product_id LIMIT 1)
			) AS image_url
		FROM order_items oi
		JOIN product_variants pv ON oi.variant_id = pv.variant_id
		JOIN products p ON pv.product_id = p.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.order_item_id
	`

	rows, err := r.db.Query(ctx, itemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items %d: %w", id, err)
	}
	defer rows.Close()

	detail.Items = []models.OrderDetailItem{}
	for rows.Next() {
		var item models.OrderDetailItem
		err := rows.Scan(
			&item.Quantity,
			&item.Price,
			&item.ProductName,
			&item.Color,
			&item.ColorName,
			&item.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		detail.Items = append(detail.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return &detail, nil
}

func (r *orderRepo) SetStatus(ctx context.Context, id, statusID int) error {
	if id <= 0 {
		return fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}
	if statusID <= 0 {
		return fmt.Errorf("%w: status ID must be positive", ErrInvalidInput)
	}

	sql := `UPDATE orders SET status_id = $1 WHERE order_id = $2`

	tag, err := r.db.Exec(ctx, sql, statusID, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: unknown status id %d", ErrInvalidInput, statusID)
		}
		return fmt.Errorf("failed to update status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *orderRepo) Cancel(ctx context.Context, id int) error {
	return r.SetStatus(ctx, id, CancelledStatusID)
}
