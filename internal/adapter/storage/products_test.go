package storage

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webshop/backend/internal/core/domain"
)

// passthroughConverter lets non-scalar args (string slices for
// ANY($1)) reach the mock; the real pgx driver converts them itself.
type passthroughConverter struct{}

func (passthroughConverter) ConvertValue(v any) (driver.Value, error) {
	if converted, err := driver.DefaultParameterConverter.ConvertValue(v); err == nil {
		return converted, nil
	}
	return v, nil
}

func newMockDB(t *testing.T) (sqldb, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.ValueConverterOption(passthroughConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestProductsRepositoryProduct(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		rows := sqlmock.NewRows(
			[]string{"id", "name", "description", "price", "stock"},
		).AddRow(1, "Widget", "small widget", 9.99, 5)

		mock.ExpectQuery("SELECT id, name, description, price, stock").
			WithArgs(int64(1)).
			WillReturnRows(rows)

		p, err := repo.Product(t.Context(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Widget", p.Name)
		assert.Equal(t, 9.99, p.Price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectQuery("SELECT id, name, description, price, stock").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "name", "description", "price", "stock"}))

		_, err := repo.Product(t.Context(), 42)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProductsRepositoryReplaceCatalog(t *testing.T) {
	t.Run("UpsertsAndDeletesAbsentInOneTx", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO products")
		prep.ExpectExec().
			WithArgs("A", "", 10.0, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().
			WithArgs("B", "", 3.5, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(
			"DELETE FROM products WHERE NOT (name = ANY($1))")).
			WithArgs([]string{"A", "B"}).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ReplaceCatalog(t.Context(), []domain.Product{
			{Name: "A", Price: 10.0, Stock: 5},
			{Name: "B", Price: 3.5, Stock: 2},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyCatalogClearsTable", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO products")
		mock.ExpectExec(regexp.QuoteMeta(
			"DELETE FROM products WHERE NOT (name = ANY($1))")).
			WithArgs([]string{}).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err := repo.ReplaceCatalog(t.Context(), nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnUpsertFailure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO products")
		prep.ExpectExec().
			WithArgs("A", "", 10.0, 5).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.ReplaceCatalog(t.Context(), []domain.Product{
			{Name: "A", Price: 10.0, Stock: 5},
		})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductsRepositoryUpsertImported(t *testing.T) {
	t.Run("Insert", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectQuery("INSERT INTO products").
			WithArgs(int64(7), "Bolt", "steel bolt", 0.55).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(true))

		created, err := repo.UpsertImported(t.Context(), domain.Product{
			ID: 7, Name: "Bolt", Description: "steel bolt", Price: 0.55,
		})
		require.NoError(t, err)
		assert.True(t, created)
	})
}
