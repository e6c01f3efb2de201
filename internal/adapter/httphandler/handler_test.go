package httphandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

type fakeOrders struct {
	placed  port.PlacedOrder
	history domain.OrderHistory
	err     error
}

func (f fakeOrders) PlaceOrder(
	context.Context, int64, []port.PlaceOrderItem,
) (port.PlacedOrder, error) {
	return f.placed, f.err
}

func (f fakeOrders) CustomerOrders(context.Context, int64) (domain.OrderHistory, error) {
	return f.history, f.err
}

func (f fakeOrders) PlaceLocalOrder(
	context.Context, int64, []port.PlaceOrderItem,
) (domain.Order, error) {
	return domain.Order{}, f.err
}

func (f fakeOrders) UpdateOrderStatus(
	context.Context, int64, domain.Status,
) (domain.Order, error) {
	return domain.Order{}, f.err
}

func newOrdersServer(f fakeOrders) *httptest.Server {
	mux := http.NewServeMux()
	RegisterOrders(mux, f, f, f, f)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestPostOrder_Created(t *testing.T) {
	srv := newOrdersServer(fakeOrders{
		placed: port.PlacedOrder{Confirmation: json.RawMessage(`{"ID":"po-1"}`)},
	})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/orders",
		`{"customerId":7,"items":[{"productId":1,"quantity":2}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body OrderPlacedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, map[string]any{"ID": "po-1"}, body.ERP)
}

func TestPostOrder_InsufficientStock(t *testing.T) {
	srv := newOrdersServer(fakeOrders{
		err: &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{
			{ProductName: "Widget", Requested: 5, Available: 1},
		}},
	})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/orders",
		`{"customerId":7,"items":[{"productId":1,"quantity":5}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Error   string            `json:"error"`
		Details []ShortfallDetail `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "insufficient stock", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, ShortfallDetail{
		ProductName: "Widget", Requested: 5, Available: 1,
	}, body.Details[0])
}

func TestPostOrder_UpstreamUnavailable(t *testing.T) {
	srv := newOrdersServer(fakeOrders{err: domain.ErrUpstreamUnavailable})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/orders",
		`{"customerId":7,"items":[{"productId":1,"quantity":1}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestPostOrder_UnknownCustomer(t *testing.T) {
	srv := newOrdersServer(fakeOrders{err: domain.ErrNotFound})
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/orders",
		`{"customerId":99,"items":[{"productId":1,"quantity":1}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCustomerOrders_CanonicalArray(t *testing.T) {
	srv := newOrdersServer(fakeOrders{
		history: domain.OrderHistory{Orders: []domain.Order{
			{ID: "o-1", Status: domain.StatusShipped},
		}},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders/customer/7")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []OrderView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "shipped", body[0].Status)
}

func TestGetCustomerOrders_DegradedShape(t *testing.T) {
	srv := newOrdersServer(fakeOrders{
		history: domain.OrderHistory{Degraded: true, Orders: []domain.Order{
			{ID: "3"},
		}},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders/customer/7")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body DegradedOrdersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.ERPUnreachable)
	require.Len(t, body.Orders, 1)
}

func TestGetCustomerOrders_BadID(t *testing.T) {
	srv := newOrdersServer(fakeOrders{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders/customer/abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type fakeRegistrar struct {
	customer domain.Customer
	err      error
}

func (f fakeRegistrar) Register(context.Context, domain.Customer) (domain.Customer, error) {
	return f.customer, f.err
}

func (f fakeRegistrar) Login(context.Context, string, string) (domain.Customer, error) {
	return f.customer, f.err
}

func (f fakeRegistrar) CustomerWithOrders(
	context.Context, int64,
) (domain.Customer, []domain.Order, error) {
	return f.customer, nil, f.err
}

func (f fakeRegistrar) UpdateProfile(context.Context, domain.Customer) (domain.Customer, error) {
	return f.customer, f.err
}

func TestPostLogin_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	RegisterCustomers(mux, fakeRegistrar{err: domain.ErrNotFound})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/customers/login",
		`{"email":"ada@example.com","password":"wrong"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAllowJSON_RejectsOtherMediaTypes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(AllowJSON(mux))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/echo", "text/plain", strings.NewReader("hi"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
