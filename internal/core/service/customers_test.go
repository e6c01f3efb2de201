package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/webshop/backend/internal/core/domain"
)

func TestCustomerService_Register_CreatesWhenEmailFree(t *testing.T) {
	customers := new(MockCustomerRepository)
	s := NewCustomerService(customers, new(MockOrderRepository))
	ctx := context.Background()

	in := domain.Customer{Name: "Ada", Email: "ada@example.com", Password: "secret"}
	customers.On("CustomerByEmail", ctx, "ada@example.com").Return(
		domain.Customer{}, domain.ErrNotFound)
	customers.On("CreateCustomer", ctx, in).Return(
		domain.Customer{ID: 1, Name: "Ada", Email: "ada@example.com"}, nil)

	created, err := s.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Empty(t, created.Password)
}

func TestCustomerService_Register_DuplicateEmail(t *testing.T) {
	customers := new(MockCustomerRepository)
	s := NewCustomerService(customers, new(MockOrderRepository))
	ctx := context.Background()

	customers.On("CustomerByEmail", ctx, "ada@example.com").Return(
		domain.Customer{ID: 1}, nil)

	_, err := s.Register(ctx, domain.Customer{
		Name: "Ada", Email: "ada@example.com", Password: "secret",
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	customers.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
}

func TestCustomerService_Register_MissingFields(t *testing.T) {
	s := NewCustomerService(new(MockCustomerRepository), new(MockOrderRepository))

	_, err := s.Register(context.Background(), domain.Customer{Name: "Ada"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCustomerService_Login_BadCredentials(t *testing.T) {
	customers := new(MockCustomerRepository)
	s := NewCustomerService(customers, new(MockOrderRepository))
	ctx := context.Background()

	customers.On("CustomerByCredentials", ctx, "ada@example.com", "wrong").Return(
		domain.Customer{}, domain.ErrNotFound)

	_, err := s.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerService_CustomerWithOrders(t *testing.T) {
	customers := new(MockCustomerRepository)
	orders := new(MockOrderRepository)
	s := NewCustomerService(customers, orders)
	ctx := context.Background()

	customers.On("Customer", ctx, int64(7)).Return(
		domain.Customer{ID: 7, Name: "Ada"}, nil)
	orders.On("OrdersByCustomer", ctx, int64(7)).Return([]domain.Order{
		{ID: "1"}, {ID: "2"},
	}, nil)

	customer, history, err := s.CustomerWithOrders(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ada", customer.Name)
	assert.Len(t, history, 2)
}
