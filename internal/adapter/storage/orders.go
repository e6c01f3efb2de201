package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.OrderRepository = (*OrdersRepository)(nil)

type OrdersRepository struct {
	sqldb sqldb
}

func NewOrdersRepository(sqldb sqldb) OrdersRepository {
	return OrdersRepository{sqldb}
}

// CreateOrder writes the order row and its items atomically. This is
// the legacy local path: it records orders only when the ERP is not
// the system of record for them.
func (r OrdersRepository) CreateOrder(
	ctx context.Context, customerID int64, items []domain.OrderItem,
) (o domain.Order, createErr error) {
	const op = "OrdersRepository.CreateOrder"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if createErr == nil {
			if err := tx.Commit(); err != nil {
				createErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	var (
		orderID   int64
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, total_price, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;`,
		customerID, total, domain.StatusPending,
	).Scan(&orderID, &createdAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4);`)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, it := range items {
		productID, err := strconv.ParseInt(it.ProductID, 10, 64)
		if err != nil {
			return domain.Order{}, fmt.Errorf(
				"%s: %w: product id %q", op, domain.ErrInvalidArgument, it.ProductID)
		}
		if _, err := stmt.ExecContext(ctx,
			orderID, productID, it.Quantity, it.Price,
		); err != nil {
			return domain.Order{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return domain.Order{
		ID:        strconv.FormatInt(orderID, 10),
		CreatedAt: createdAt,
		Status:    domain.StatusPending,
		Total:     total,
		Items:     items,
	}, nil
}

// OrdersByCustomer reads the local order history, newest first. It
// backs the degraded mode: the data may be stale against the ERP.
func (r OrdersRepository) OrdersByCustomer(
	ctx context.Context, customerID int64,
) ([]domain.Order, error) {
	const op = "OrdersRepository.OrdersByCustomer"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT o.id, o.created_at, o.status, o.total_price,
			oi.product_id, oi.quantity, oi.price, COALESCE(p.name, '')
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC, o.id DESC;`

	rows, err := r.sqldb.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		index  = make(map[int64]int)
	)
	for rows.Next() {
		var (
			orderID   int64
			createdAt time.Time
			status    string
			total     float64
			productID sql.NullInt64
			quantity  sql.NullInt64
			price     sql.NullFloat64
			name      string
		)
		err := rows.Scan(&orderID, &createdAt, &status, &total,
			&productID, &quantity, &price, &name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		i, seen := index[orderID]
		if !seen {
			orders = append(orders, domain.Order{
				ID:        strconv.FormatInt(orderID, 10),
				CreatedAt: createdAt,
				Status:    domain.Status(status),
				Total:     total,
			})
			i = len(orders) - 1
			index[orderID] = i
		}

		if productID.Valid {
			orders[i].Items = append(orders[i].Items, domain.OrderItem{
				ProductID:   strconv.FormatInt(productID.Int64, 10),
				ProductName: name,
				Quantity:    int(quantity.Int64),
				Price:       price.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (r OrdersRepository) UpdateOrderStatus(
	ctx context.Context, orderID int64, status domain.Status,
) (domain.Order, error) {
	const op = "OrdersRepository.UpdateOrderStatus"

	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE orders SET status = $1 WHERE id = $2
		RETURNING id, created_at, status, total_price;`

	var (
		id        int64
		createdAt time.Time
		st        string
		total     float64
	)
	err := r.sqldb.QueryRowContext(ctx, query, status, orderID).Scan(
		&id, &createdAt, &st, &total,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Order{
		ID:        strconv.FormatInt(id, 10),
		CreatedAt: createdAt,
		Status:    domain.Status(st),
		Total:     total,
	}, nil
}
