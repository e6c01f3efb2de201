package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/normalize"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.OrderPlacer = (*OrderService)(nil)
var _ port.OrderViewer = (*OrderService)(nil)
var _ port.LocalOrderPlacer = (*OrderService)(nil)
var _ port.OrderStatusUpdater = (*OrderService)(nil)

// OrderService reconciles order state between the local store and
// the ERP. The ERP is the sole source of truth for order existence,
// stock and pricing; the local store only serves the degraded path.
type OrderService struct {
	gateway   port.ERPGateway
	submitter port.OrderSubmitter
	products  port.ProductRepository
	customers port.CustomerRepository
	orders    port.OrderRepository
}

func NewOrderService(
	gateway port.ERPGateway,
	submitter port.OrderSubmitter,
	products port.ProductRepository,
	customers port.CustomerRepository,
	orders port.OrderRepository,
) OrderService {
	return OrderService{
		gateway:   gateway,
		submitter: submitter,
		products:  products,
		customers: customers,
		orders:    orders,
	}
}

// PlaceOrder runs the creation flow: enrich, verify stock, submit.
// The flow is sequential and terminal on the first hard failure. A
// submission failure means "order not confirmed"; no local shadow
// order is written.
func (s OrderService) PlaceOrder(
	ctx context.Context, customerID int64, items []port.PlaceOrderItem,
) (port.PlacedOrder, error) {
	const op = "OrderService.PlaceOrder"

	if err := ctx.Err(); err != nil {
		return port.PlacedOrder{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(items) == 0 {
		return port.PlacedOrder{}, fmt.Errorf(
			"%s: %w: order has no items", op, domain.ErrInvalidArgument)
	}

	customer, err := s.customers.Customer(ctx, customerID)
	if err != nil {
		return port.PlacedOrder{}, fmt.Errorf("%s: %w", op, err)
	}

	enriched := s.enrich(ctx, items)

	names := make([]string, 0, len(enriched))
	for _, it := range enriched {
		names = append(names, it.ProductName)
	}

	// The stock check establishes authoritative truth: if it cannot
	// run, the order must not proceed unverified.
	levels, err := s.gateway.Stocks(ctx, names)
	if err != nil {
		return port.PlacedOrder{}, fmt.Errorf("%s: %w", op, err)
	}

	var shortfalls []domain.StockShortfall
	for _, it := range enriched {
		available := levels.Available(it.ProductName)
		if it.Quantity > available {
			shortfalls = append(shortfalls, domain.StockShortfall{
				ProductName: it.ProductName,
				Requested:   it.Quantity,
				Available:   available,
			})
		}
	}
	if len(shortfalls) != 0 {
		return port.PlacedOrder{}, fmt.Errorf("%s: %w", op,
			&domain.InsufficientStockError{Shortfalls: shortfalls})
	}

	var total float64
	for _, it := range enriched {
		total += it.Price * float64(it.Quantity)
	}

	confirmation, err := s.submitter.Submit(ctx, domain.PurchaseOrder{
		Customer: domain.PurchaseCustomer{
			Name:    customer.Name,
			Email:   customer.Email,
			Address: customer.Address,
		},
		Items: enriched,
		Total: total,
	})
	if err != nil {
		return port.PlacedOrder{}, fmt.Errorf("%s: %w", op, err)
	}

	return port.PlacedOrder{Confirmation: confirmation}, nil
}

// enrich resolves name and unit price per item from the local product
// cache. A failed local lookup degrades to the client-supplied name
// or a placeholder with price 0; the ERP prices authoritatively, so
// enrichment failures never abort the order.
func (s OrderService) enrich(
	ctx context.Context, items []port.PlaceOrderItem,
) []domain.OrderItem {
	const op = "OrderService.enrich"
	log := slog.With("op", op)

	enriched := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		e := domain.OrderItem{
			ProductID: strconv.FormatInt(it.ProductID, 10),
			Quantity:  it.Quantity,
		}

		p, err := s.products.Product(ctx, it.ProductID)
		switch {
		case err == nil:
			e.ProductName = p.Name
			e.Price = p.Price
		case it.ProductName != "":
			log.Warn("product not resolved locally, using client name",
				"productID", it.ProductID, "err", err)
			e.ProductName = it.ProductName
		default:
			log.Warn("product not resolved locally, using placeholder",
				"productID", it.ProductID, "err", err)
			e.ProductName = "product-" + e.ProductID
		}

		enriched = append(enriched, e)
	}
	return enriched
}

// CustomerOrders looks the customer's orders up in the ERP with
// progressively looser matching: exact email, lowercased email,
// exact name, then substring name. When the ERP itself fails, the
// local history is served flagged as degraded instead of erroring.
func (s OrderService) CustomerOrders(
	ctx context.Context, customerID int64,
) (domain.OrderHistory, error) {
	const op = "OrderService.CustomerOrders"

	if err := ctx.Err(); err != nil {
		return domain.OrderHistory{}, fmt.Errorf("%s: %w", op, err)
	}

	customer, err := s.customers.Customer(ctx, customerID)
	if err != nil {
		return domain.OrderHistory{}, fmt.Errorf("%s: %w", op, err)
	}

	raws, err := s.gateway.OrdersByCustomerEmail(ctx, customer.Email)
	if err != nil {
		return s.localFallback(ctx, op, customerID, err)
	}

	if len(raws) == 0 {
		if lower := strings.ToLower(customer.Email); lower != customer.Email {
			raws, err = s.gateway.OrdersByCustomerEmail(ctx, lower)
			if err != nil {
				return s.localFallback(ctx, op, customerID, err)
			}
		}
	}

	if len(raws) == 0 && customer.Name != "" {
		raws, err = s.gateway.OrdersByCustomerName(ctx, customer.Name)
		if err != nil {
			return s.localFallback(ctx, op, customerID, err)
		}
		if len(raws) == 0 {
			raws, err = s.gateway.OrdersByCustomerNameContains(ctx, customer.Name)
			if err != nil {
				return s.localFallback(ctx, op, customerID, err)
			}
		}
	}

	orders := make([]domain.Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, normalize.Order(raw))
	}
	return domain.OrderHistory{Orders: orders}, nil
}

func (s OrderService) localFallback(
	ctx context.Context, op string, customerID int64, cause error,
) (domain.OrderHistory, error) {
	log := slog.With("op", op)
	log.Warn("erp order lookup failed, serving local history",
		"customerID", customerID, "err", cause)

	orders, err := s.orders.OrdersByCustomer(ctx, customerID)
	if err != nil {
		return domain.OrderHistory{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.OrderHistory{Degraded: true, Orders: orders}, nil
}

// PlaceLocalOrder is the legacy non-ERP path: prices come from the
// local table and the order is stored locally in one transaction.
func (s OrderService) PlaceLocalOrder(
	ctx context.Context, customerID int64, items []port.PlaceOrderItem,
) (domain.Order, error) {
	const op = "OrderService.PlaceLocalOrder"

	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(items) == 0 {
		return domain.Order{}, fmt.Errorf(
			"%s: %w: order has no items", op, domain.ErrInvalidArgument)
	}

	if _, err := s.customers.Customer(ctx, customerID); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		p, err := s.products.Product(ctx, it.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("%s: %w", op, err)
		}
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:   strconv.FormatInt(p.ID, 10),
			ProductName: p.Name,
			Quantity:    it.Quantity,
			Price:       p.Price,
		})
	}

	order, err := s.orders.CreateOrder(ctx, customerID, orderItems)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s OrderService) UpdateOrderStatus(
	ctx context.Context, orderID int64, status domain.Status,
) (domain.Order, error) {
	const op = "OrderService.UpdateOrderStatus"

	if err := ctx.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	switch status {
	case domain.StatusPending, domain.StatusPicked, domain.StatusShipped,
		domain.StatusCompleted, domain.StatusCanceled:
	default:
		return domain.Order{}, fmt.Errorf(
			"%s: %w: unknown status %q", op, domain.ErrInvalidArgument, status)
	}

	order, err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}
