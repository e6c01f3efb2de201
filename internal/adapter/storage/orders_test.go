package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webshop/backend/internal/core/domain"
)

func TestOrdersRepositoryCreateOrder(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "1", ProductName: "Widget", Quantity: 2, Price: 10.0},
		{ProductID: "2", ProductName: "Gadget", Quantity: 1, Price: 5.0},
	}

	t.Run("CommitsOrderAndItems", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrdersRepository(db)

		createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(int64(9), 25.0, "pending").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
				AddRow(int64(100), createdAt))
		prep := mock.ExpectPrepare("INSERT INTO order_items")
		prep.ExpectExec().
			WithArgs(int64(100), int64(1), 2, 10.0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		prep.ExpectExec().
			WithArgs(int64(100), int64(2), 1, 5.0).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		o, err := repo.CreateOrder(t.Context(), 9, items)
		require.NoError(t, err)
		assert.Equal(t, "100", o.ID)
		assert.Equal(t, 25.0, o.Total)
		assert.Equal(t, domain.StatusPending, o.Status)
		assert.Equal(t, createdAt, o.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenItemInsertFails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrdersRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(int64(9), 25.0, "pending").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
				AddRow(int64(100), time.Now()))
		prep := mock.ExpectPrepare("INSERT INTO order_items")
		prep.ExpectExec().
			WithArgs(int64(100), int64(1), 2, 10.0).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		_, err := repo.CreateOrder(t.Context(), 9, items)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrdersRepositoryOrdersByCustomer(t *testing.T) {
	t.Run("GroupsItemsPerOrder", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrdersRepository(db)

		createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{
			"id", "created_at", "status", "total_price",
			"product_id", "quantity", "price", "name",
		}).
			AddRow(int64(2), createdAt, "shipped", 25.0, int64(1), 2, 10.0, "Widget").
			AddRow(int64(2), createdAt, "shipped", 25.0, int64(2), 1, 5.0, "Gadget").
			AddRow(int64(1), createdAt, "pending", 9.5, nil, nil, nil, "")

		mock.ExpectQuery("SELECT o.id, o.created_at, o.status").
			WithArgs(int64(9)).
			WillReturnRows(rows)

		orders, err := repo.OrdersByCustomer(t.Context(), 9)
		require.NoError(t, err)
		require.Len(t, orders, 2)

		assert.Equal(t, "2", orders[0].ID)
		assert.Equal(t, domain.StatusShipped, orders[0].Status)
		require.Len(t, orders[0].Items, 2)
		assert.Equal(t, "Widget", orders[0].Items[0].ProductName)

		assert.Equal(t, "1", orders[1].ID)
		assert.Empty(t, orders[1].Items)
	})
}

func TestOrdersRepositoryUpdateOrderStatus(t *testing.T) {
	t.Run("Updates", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrdersRepository(db)

		mock.ExpectQuery("UPDATE orders SET status").
			WithArgs("shipped", int64(5)).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "created_at", "status", "total_price"}).
				AddRow(int64(5), time.Now(), "shipped", 12.0))

		o, err := repo.UpdateOrderStatus(t.Context(), 5, domain.StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, o.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrdersRepository(db)

		mock.ExpectQuery("UPDATE orders SET status").
			WithArgs("shipped", int64(404)).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "created_at", "status", "total_price"}))

		_, err := repo.UpdateOrderStatus(t.Context(), 404, domain.StatusShipped)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
