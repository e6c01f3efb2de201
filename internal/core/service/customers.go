package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.CustomerRegistrar = (*CustomerService)(nil)

type CustomerService struct {
	customers port.CustomerRepository
	orders    port.OrderRepository
}

func NewCustomerService(
	customers port.CustomerRepository, orders port.OrderRepository,
) CustomerService {
	return CustomerService{customers: customers, orders: orders}
}

func (s CustomerService) Register(
	ctx context.Context, c domain.Customer,
) (domain.Customer, error) {
	const op = "CustomerService.Register"

	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" || c.Email == "" || c.Password == "" {
		return domain.Customer{}, fmt.Errorf(
			"%s: %w: name, email and password are required",
			op, domain.ErrInvalidArgument)
	}

	if _, err := s.customers.CustomerByEmail(ctx, c.Email); err == nil {
		return domain.Customer{}, fmt.Errorf(
			"%s: %w: email already registered", op, domain.ErrInvalidArgument)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.customers.CreateCustomer(ctx, c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (s CustomerService) Login(
	ctx context.Context, email, password string,
) (domain.Customer, error) {
	const op = "CustomerService.Login"

	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	customer, err := s.customers.CustomerByCredentials(ctx, email, password)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return customer, nil
}

func (s CustomerService) CustomerWithOrders(
	ctx context.Context, id int64,
) (domain.Customer, []domain.Order, error) {
	const op = "CustomerService.CustomerWithOrders"

	if err := ctx.Err(); err != nil {
		return domain.Customer{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	customer, err := s.customers.Customer(ctx, id)
	if err != nil {
		return domain.Customer{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.orders.OrdersByCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	return customer, orders, nil
}

func (s CustomerService) UpdateProfile(
	ctx context.Context, c domain.Customer,
) (domain.Customer, error) {
	const op = "CustomerService.UpdateProfile"

	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" || c.Email == "" {
		return domain.Customer{}, fmt.Errorf(
			"%s: %w: name and email are required", op, domain.ErrInvalidArgument)
	}

	updated, err := s.customers.UpdateCustomer(ctx, c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}
