package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.ProductCataloger = (*ProductService)(nil)
var _ port.ERPProber = (*ProductService)(nil)

// ProductService serves the local product cache and proxies stock
// questions to the ERP.
type ProductService struct {
	gateway  port.ERPGateway
	products port.ProductRepository
}

func NewProductService(gateway port.ERPGateway, products port.ProductRepository) ProductService {
	return ProductService{gateway: gateway, products: products}
}

func (s ProductService) Products(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductService.Products"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.products.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s ProductService) Product(ctx context.Context, id int64) (domain.Product, error) {
	const op = "ProductService.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.products.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s ProductService) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "ProductService.CreateProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price < 0 {
		return domain.Product{}, fmt.Errorf(
			"%s: %w: name is required and price must not be negative",
			op, domain.ErrInvalidArgument)
	}

	created, err := s.products.CreateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (s ProductService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductService.DeleteProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s ProductService) Stocks(
	ctx context.Context, names []string,
) (domain.StockLevels, error) {
	const op = "ProductService.Stocks"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	levels, err := s.gateway.Stocks(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return levels, nil
}

func (s ProductService) Ping(ctx context.Context) bool {
	return s.gateway.Ping(ctx)
}
