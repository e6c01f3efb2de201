package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/webshop/backend/internal/core/domain"
)

type MockERPGateway struct {
	mock.Mock
}

func (m *MockERPGateway) Ping(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockERPGateway) Stock(ctx context.Context, productName string) (int, error) {
	args := m.Called(ctx, productName)
	return args.Int(0), args.Error(1)
}

func (m *MockERPGateway) Stocks(
	ctx context.Context, productNames []string,
) (domain.StockLevels, error) {
	args := m.Called(ctx, productNames)
	levels, _ := args.Get(0).(domain.StockLevels)
	return levels, args.Error(1)
}

func (m *MockERPGateway) CreatePurchaseOrder(
	ctx context.Context, po domain.PurchaseOrder,
) (json.RawMessage, error) {
	args := m.Called(ctx, po)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *MockERPGateway) OrdersByCustomerEmail(
	ctx context.Context, email string,
) ([]domain.RawRecord, error) {
	args := m.Called(ctx, email)
	raws, _ := args.Get(0).([]domain.RawRecord)
	return raws, args.Error(1)
}

func (m *MockERPGateway) OrdersByCustomerName(
	ctx context.Context, name string,
) ([]domain.RawRecord, error) {
	args := m.Called(ctx, name)
	raws, _ := args.Get(0).([]domain.RawRecord)
	return raws, args.Error(1)
}

func (m *MockERPGateway) OrdersByCustomerNameContains(
	ctx context.Context, name string,
) ([]domain.RawRecord, error) {
	args := m.Called(ctx, name)
	raws, _ := args.Get(0).([]domain.RawRecord)
	return raws, args.Error(1)
}

func (m *MockERPGateway) Products(ctx context.Context) ([]domain.RawRecord, error) {
	args := m.Called(ctx)
	raws, _ := args.Get(0).([]domain.RawRecord)
	return raws, args.Error(1)
}

func (m *MockERPGateway) ProductsDirect(ctx context.Context) ([]domain.RawRecord, error) {
	args := m.Called(ctx)
	raws, _ := args.Get(0).([]domain.RawRecord)
	return raws, args.Error(1)
}

type MockOrderSubmitter struct {
	mock.Mock
}

func (m *MockOrderSubmitter) Submit(
	ctx context.Context, po domain.PurchaseOrder,
) (json.RawMessage, error) {
	args := m.Called(ctx, po)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Products(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockProductRepository) Product(ctx context.Context, id int64) (domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(domain.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(domain.Product)
	return created, args.Error(1)
}

func (m *MockProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ReplaceCatalog(ctx context.Context, ps []domain.Product) error {
	args := m.Called(ctx, ps)
	return args.Error(0)
}

func (m *MockProductRepository) UpsertImported(
	ctx context.Context, p domain.Product,
) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) CreateCustomer(
	ctx context.Context, c domain.Customer,
) (domain.Customer, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(domain.Customer)
	return created, args.Error(1)
}

func (m *MockCustomerRepository) CustomerByEmail(
	ctx context.Context, email string,
) (domain.Customer, error) {
	args := m.Called(ctx, email)
	c, _ := args.Get(0).(domain.Customer)
	return c, args.Error(1)
}

func (m *MockCustomerRepository) CustomerByCredentials(
	ctx context.Context, email, password string,
) (domain.Customer, error) {
	args := m.Called(ctx, email, password)
	c, _ := args.Get(0).(domain.Customer)
	return c, args.Error(1)
}

func (m *MockCustomerRepository) Customer(ctx context.Context, id int64) (domain.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(domain.Customer)
	return c, args.Error(1)
}

func (m *MockCustomerRepository) UpdateCustomer(
	ctx context.Context, c domain.Customer,
) (domain.Customer, error) {
	args := m.Called(ctx, c)
	updated, _ := args.Get(0).(domain.Customer)
	return updated, args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(
	ctx context.Context, customerID int64, items []domain.OrderItem,
) (domain.Order, error) {
	args := m.Called(ctx, customerID, items)
	o, _ := args.Get(0).(domain.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) OrdersByCustomer(
	ctx context.Context, customerID int64,
) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(
	ctx context.Context, orderID int64, status domain.Status,
) (domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	o, _ := args.Get(0).(domain.Order)
	return o, args.Error(1)
}
