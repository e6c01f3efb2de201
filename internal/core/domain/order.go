package domain

import "time"

// Status is the canonical order status, independent of which ERP
// field shape produced it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPicked    Status = "picked"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// An Order in canonical shape. Both the ERP-normalized path and the
// local-fallback path converge to it. ID is ERP-supplied or local
// depending on which source produced the order.
type Order struct {
	ID        string
	CreatedAt time.Time
	Status    Status
	Total     float64
	Items     []OrderItem
}

// An OrderItem is an enriched order line. Price is 0 when the product
// could not be resolved locally; the ERP prices authoritatively.
type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
}

// An OrderHistory is a customer's order list. Degraded marks a
// local-cache fallback served while the ERP was unreachable: status
// and pricing may be stale.
type OrderHistory struct {
	Degraded bool
	Orders   []Order
}

// A PurchaseOrder is the enriched payload submitted to the ERP.
type PurchaseOrder struct {
	Customer PurchaseCustomer
	Items    []OrderItem
	Total    float64
}

type PurchaseCustomer struct {
	Name    string
	Email   string
	Address string
}

// RawRecord is an ERP payload whose field shape is not fixed across
// integration paths. The normalizers in core/normalize turn it into
// canonical types.
type RawRecord map[string]any
