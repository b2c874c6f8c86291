package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
)

// CreateOrder inserts the order, its line items, and decrements product
// stock in a single transaction. Stock is decremented with a conditional
// update so two concurrent checkouts cannot oversell a product.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, order_number, user_id, total_amount, status, payment_status, payment_method,
	                              ship_street, ship_city, ship_state, ship_postal_code, ship_country, ship_phone,
	                              notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.TotalAmount,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.Address.Street,
		order.Address.City,
		order.Address.State,
		order.Address.PostalCode,
		order.Address.Country,
		order.Address.Phone,
		order.Notes)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	for _, item := range order.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`,
			order.ID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrInsufficientStock
		}
	}

	return tx.Commit()
}

// GetOrderByID fetches an order scoped to its owner, items included.
func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID, userID int64) (*domain.Order, error) {
	query := `SELECT id, order_number, user_id, total_amount, status, payment_status, payment_method,
	                 ship_street, ship_city, ship_state, ship_postal_code, ship_country, ship_phone,
	                 notes, created_at
	          FROM orders WHERE id = $1 AND user_id = $2`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.Address.Street,
		&order.Address.City,
		&order.Address.State,
		&order.Address.PostalCode,
		&order.Address.Country,
		&order.Address.Phone,
		&order.Notes,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.listOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// ListOrdersByUserID returns the user's orders, newest first.
func (r *Repository) ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT id, order_number, user_id, total_amount, status, payment_status, payment_method,
	                 ship_street, ship_city, ship_state, ship_postal_code, ship_country, ship_phone,
	                 notes, created_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.OrderNumber,
			&order.UserID,
			&order.TotalAmount,
			&order.Status,
			&order.PaymentStatus,
			&order.PaymentMethod,
			&order.Address.Street,
			&order.Address.City,
			&order.Address.State,
			&order.Address.PostalCode,
			&order.Address.Country,
			&order.Address.Phone,
			&order.Notes,
			&order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		items, err := r.listOrderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

func (r *Repository) listOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT oi.product_id, p.name, p.image, oi.quantity, oi.price
	          FROM order_items oi
	          JOIN products p ON p.id = oi.product_id
	          WHERE oi.order_id = $1
	          ORDER BY oi.id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.Quantity,
			&item.Price,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// CancelOrder sets the order to cancelled with a single conditional
// update: the write only lands if the order still belongs to the user
// and is not already in a terminal status. Returns false when zero rows
// were touched, which the caller disambiguates into not-found vs
// not-cancellable.
func (r *Repository) CancelOrder(ctx context.Context, id uuid.UUID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1
		 WHERE id = $2 AND user_id = $3 AND status NOT IN ($4, $5)`,
		domain.OrderStatusCancelled, id, userID,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled)
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel order rows affected: %w", err)
	}
	return rows > 0, nil
}

// AdvanceOrderStatus moves an order from exactly the expected current
// status to the next one. A concurrent cancel (or a stale expectation)
// leaves zero rows updated.
func (r *Repository) AdvanceOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, fmt.Errorf("advance order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance order status rows affected: %w", err)
	}
	return rows > 0, nil
}

// SetPaymentStatus updates the payment status of any existing order.
func (r *Repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1 WHERE id = $2`,
		status, id)
	if err != nil {
		return false, fmt.Errorf("set payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set payment status rows affected: %w", err)
	}
	return rows > 0, nil
}
