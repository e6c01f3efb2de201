package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.CustomerRepository = (*CustomersRepository)(nil)

type CustomersRepository struct {
	sqldb sqldb
}

func NewCustomersRepository(sqldb sqldb) CustomersRepository {
	return CustomersRepository{sqldb}
}

func (r CustomersRepository) CreateCustomer(
	ctx context.Context, c domain.Customer,
) (domain.Customer, error) {
	const op = "CustomersRepository.CreateCustomer"

	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO customers (name, email, password, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`

	err := r.sqldb.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Password, c.Address,
	).Scan(&c.ID)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	c.Password = ""
	return c, nil
}

func (r CustomersRepository) CustomerByEmail(
	ctx context.Context, email string,
) (domain.Customer, error) {
	const op = "CustomersRepository.CustomerByEmail"
	return r.queryOne(ctx, op,
		`SELECT id, name, email, address FROM customers WHERE email = $1;`,
		email)
}

// CustomerByCredentials compares the password verbatim, as the
// schema stores it. Known deficiency: credentials are plaintext.
func (r CustomersRepository) CustomerByCredentials(
	ctx context.Context, email, password string,
) (domain.Customer, error) {
	const op = "CustomersRepository.CustomerByCredentials"
	return r.queryOne(ctx, op,
		`SELECT id, name, email, address FROM customers
		 WHERE email = $1 AND password = $2;`,
		email, password)
}

func (r CustomersRepository) Customer(
	ctx context.Context, id int64,
) (domain.Customer, error) {
	const op = "CustomersRepository.Customer"
	return r.queryOne(ctx, op,
		`SELECT id, name, email, address FROM customers WHERE id = $1;`,
		id)
}

func (r CustomersRepository) UpdateCustomer(
	ctx context.Context, c domain.Customer,
) (domain.Customer, error) {
	const op = "CustomersRepository.UpdateCustomer"

	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE customers SET name = $1, email = $2, address = $3
		WHERE id = $4
		RETURNING id, name, email, address;`

	var updated domain.Customer
	err := r.sqldb.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Address, c.ID,
	).Scan(&updated.ID, &updated.Name, &updated.Email, &updated.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (r CustomersRepository) queryOne(
	ctx context.Context, op, query string, args ...any,
) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	var c domain.Customer
	err := r.sqldb.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.Name, &c.Email, &c.Address,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
