package httphandler

import (
	"time"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

type (
	OrderRequest struct {
		CustomerID int64              `json:"customerId"`
		Items      []OrderItemRequest `json:"items"`
	}

	OrderItemRequest struct {
		ProductID   int64  `json:"productId"`
		ProductName string `json:"productName"`
		Quantity    int    `json:"quantity"`
	}

	OrderPlacedResponse struct {
		Success bool `json:"success"`
		ERP     any  `json:"erp"`
	}

	OrderView struct {
		ID        string          `json:"id"`
		CreatedAt time.Time       `json:"createdAt"`
		Status    string          `json:"status"`
		Total     float64         `json:"total"`
		Items     []OrderItemView `json:"items"`
	}

	OrderItemView struct {
		ProductID   string  `json:"productId"`
		ProductName string  `json:"productName"`
		Quantity    int     `json:"quantity"`
		Price       float64 `json:"price"`
	}

	DegradedOrdersResponse struct {
		ERPUnreachable bool        `json:"erp_unreachable"`
		Orders         []OrderView `json:"orders"`
	}

	StatusUpdateRequest struct {
		Status string `json:"status"`
	}
)

type (
	ProductView struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}

	ProductRequest struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}

	SyncResponse struct {
		Success bool `json:"success"`
		Synced  int  `json:"synced"`
		Total   int  `json:"total"`
	}
)

type (
	RegisterRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Address  string `json:"address"`
		Password string `json:"password"`
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	CustomerView struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}

	CustomerWithOrdersView struct {
		CustomerView
		Orders []OrderView `json:"orders"`
	}

	ProfileUpdateRequest struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}
)

type (
	ImportFileView struct {
		Name     string `json:"name"`
		Size     int64  `json:"size"`
		Modified int64  `json:"modified"`
	}

	ImportResultView struct {
		Success  bool     `json:"success"`
		Filename string   `json:"filename"`
		Imported int      `json:"imported"`
		Updated  int      `json:"updated"`
		Errors   []string `json:"errors"`
	}
)

type (
	ErrorResponse struct {
		Error   string `json:"error"`
		Details any    `json:"details,omitempty"`
	}

	ShortfallDetail struct {
		ProductName string `json:"productName"`
		Requested   int    `json:"requested"`
		Available   int    `json:"available"`
	}

	ERPStatusResponse struct {
		Reachable bool `json:"reachable"`
	}
)

func toOrderView(o domain.Order) OrderView {
	v := OrderView{
		ID:        o.ID,
		CreatedAt: o.CreatedAt,
		Status:    string(o.Status),
		Total:     o.Total,
		Items:     make([]OrderItemView, len(o.Items)),
	}
	for i, it := range o.Items {
		v.Items[i] = OrderItemView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
	}
	return v
}

func toOrderViews(orders []domain.Order) []OrderView {
	vs := make([]OrderView, len(orders))
	for i, o := range orders {
		vs[i] = toOrderView(o)
	}
	return vs
}

func toProductView(p domain.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

func toCustomerView(c domain.Customer) CustomerView {
	return CustomerView{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
	}
}

func toImportResultView(r port.ImportResult) ImportResultView {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return ImportResultView{
		Success:  r.Success,
		Filename: r.Filename,
		Imported: r.Imported,
		Updated:  r.Updated,
		Errors:   errs,
	}
}
