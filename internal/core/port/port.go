package port

import (
	"context"
	"encoding/json"

	"github.com/webshop/backend/internal/core/domain"
)

// ERPGateway is the single outbound client to the ERP system of
// record. Failures surface as the typed outcomes in domain/errors.go
// so callers can run fallback logic.
type ERPGateway interface {
	Ping(ctx context.Context) bool
	Stock(ctx context.Context, productName string) (int, error)
	Stocks(ctx context.Context, productNames []string) (domain.StockLevels, error)
	CreatePurchaseOrder(ctx context.Context, po domain.PurchaseOrder) (json.RawMessage, error)
	OrdersByCustomerEmail(ctx context.Context, email string) ([]domain.RawRecord, error)
	OrdersByCustomerName(ctx context.Context, name string) ([]domain.RawRecord, error)
	OrdersByCustomerNameContains(ctx context.Context, name string) ([]domain.RawRecord, error)
	Products(ctx context.Context) ([]domain.RawRecord, error)
	ProductsDirect(ctx context.Context) ([]domain.RawRecord, error)
}

type ProductRepository interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	// ReplaceCatalog upserts every product keyed by name and deletes
	// local rows absent from ps, in one transaction.
	ReplaceCatalog(ctx context.Context, ps []domain.Product) error
	// UpsertImported upserts a product keyed by its ERP-assigned id.
	UpsertImported(ctx context.Context, p domain.Product) (created bool, err error)
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	CustomerByEmail(ctx context.Context, email string) (domain.Customer, error)
	CustomerByCredentials(ctx context.Context, email, password string) (domain.Customer, error)
	Customer(ctx context.Context, id int64) (domain.Customer, error)
	UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, customerID int64, items []domain.OrderItem) (domain.Order, error)
	OrdersByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.Status) (domain.Order, error)
}

type PlaceOrderItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
}

type PlacedOrder struct {
	Confirmation json.RawMessage
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, customerID int64, items []PlaceOrderItem) (PlacedOrder, error)
}

type OrderViewer interface {
	CustomerOrders(ctx context.Context, customerID int64) (domain.OrderHistory, error)
}

type LocalOrderPlacer interface {
	PlaceLocalOrder(ctx context.Context, customerID int64, items []PlaceOrderItem) (domain.Order, error)
}

type OrderStatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.Status) (domain.Order, error)
}

type SyncReport struct {
	Synced int
	Total  int
}

type ProductSyncer interface {
	SyncFromERP(ctx context.Context) (SyncReport, error)
}

type ImportFileInfo struct {
	Name     string
	Size     int64
	Modified int64
}

type ImportResult struct {
	Success  bool
	Filename string
	Imported int
	Updated  int
	Errors   []string
}

type ProductImporter interface {
	ListPending(ctx context.Context) ([]ImportFileInfo, error)
	ImportFile(ctx context.Context, filename string) (ImportResult, error)
	ImportAll(ctx context.Context) ([]ImportResult, error)
}

type CustomerRegistrar interface {
	Register(ctx context.Context, c domain.Customer) (domain.Customer, error)
	Login(ctx context.Context, email, password string) (domain.Customer, error)
	CustomerWithOrders(ctx context.Context, id int64) (domain.Customer, []domain.Order, error)
	UpdateProfile(ctx context.Context, c domain.Customer) (domain.Customer, error)
}

type ProductCataloger interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	Stocks(ctx context.Context, names []string) (domain.StockLevels, error)
}

type ERPProber interface {
	Ping(ctx context.Context) bool
}

// OrderSubmitter hands an enriched purchase order to a fulfillment
// channel and waits for the confirmation. The ERP gateway satisfies
// it directly; the broker bridge satisfies it over the message queue.
type OrderSubmitter interface {
	Submit(ctx context.Context, po domain.PurchaseOrder) (json.RawMessage, error)
}
