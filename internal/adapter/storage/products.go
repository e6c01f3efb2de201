package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.ProductRepository = (*ProductsRepository)(nil)

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) Products(
	ctx context.Context,
) ([]domain.Product, error) {
	const op = "ProductsRepository.Products"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, name, description, price, stock
		FROM products ORDER BY id;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ps []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) Product(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "ProductsRepository.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, name, description, price, stock
		FROM products WHERE id = $1;`

	var p domain.Product
	err := r.sqldb.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r ProductsRepository) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "ProductsRepository.CreateProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO products (name, description, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`

	err := r.sqldb.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.Stock,
	).Scan(&p.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r ProductsRepository) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductsRepository.DeleteProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.sqldb.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

// ReplaceCatalog makes the local catalog mirror the ERP's: every
// given product is upserted by name and every local row absent from
// the set is deleted, in one transaction. An empty set clears the
// whole table; that is the ERP-is-authoritative policy, and it has
// no undo.
func (r ProductsRepository) ReplaceCatalog(
	ctx context.Context, ps []domain.Product,
) (replaceErr error) {
	const op = "ProductsRepository.ReplaceCatalog"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if replaceErr == nil {
			if err := tx.Commit(); err != nil {
				replaceErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	upsert := `
		INSERT INTO products (name, description, price, stock)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			price = EXCLUDED.price,
			stock = EXCLUDED.stock;`

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	names := make([]string, 0, len(ps))
	for _, p := range ps {
		if _, err := stmt.ExecContext(ctx,
			p.Name, p.Description, p.Price, p.Stock,
		); err != nil {
			return fmt.Errorf("%s: failed to upsert %q: %w", op, p.Name, err)
		}
		names = append(names, p.Name)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM products WHERE NOT (name = ANY($1));`, names,
	); err != nil {
		return fmt.Errorf("%s: failed to delete absent: %w", op, err)
	}

	return nil
}

// UpsertImported writes a batch-import row keyed by the ERP-assigned
// product id. Stock is not part of the import feed: it stays 0 on
// insert and untouched on update.
func (r ProductsRepository) UpsertImported(
	ctx context.Context, p domain.Product,
) (created bool, err error) {
	const op = "ProductsRepository.UpsertImported"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO products (id, name, description, price, stock)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price
		RETURNING (xmax = 0);`

	err = r.sqldb.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}
