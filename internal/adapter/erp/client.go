// Package erp is the webshop's sole outbound client to the ERP
// system of record. It hides transport, auth and retry mechanics and
// surfaces failures as the typed outcomes from core/domain so callers
// can run fallback logic.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
	"github.com/webshop/backend/pkg/retry"
)

var _ port.ERPGateway = (*Client)(nil)

const (
	stockPath      = "/api/stock"
	stockBatchPath = "/api/stock-batch"
	purchasePath   = "/api/purchase-orders"
	productsPath   = "/odata/v4/simple-erp/Products"
	ordersPath     = "/odata/v4/simple-erp/Orders"

	ordersExpand = "customer,items($expand=product)"

	directTimeout = 5 * time.Second
)

// Config carries the gateway's connection settings. Supplied
// explicitly by the caller; the gateway holds no global state.
type Config struct {
	BaseURL     string
	User        string
	Pass        string
	Timeout     time.Duration
	PingTimeout time.Duration
	Retry       retry.Policy
	PingRetry   retry.Policy
}

type Client struct {
	baseURL    string
	user, pass string
	httpc      *http.Client
	pingc      *http.Client
	directc    *http.Client
	policy     retry.Policy
	pingPolicy retry.Policy
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = 3 * time.Second
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.Policy{
			Attempts:  3,
			BaseDelay: 200 * time.Millisecond,
			Jitter:    true,
		}
	}
	if cfg.PingRetry.Attempts == 0 {
		cfg.PingRetry = retry.Policy{
			Attempts:  2,
			BaseDelay: 100 * time.Millisecond,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		user:       cfg.User,
		pass:       cfg.Pass,
		httpc:      &http.Client{Timeout: cfg.Timeout},
		pingc:      &http.Client{Timeout: cfg.PingTimeout},
		directc:    &http.Client{Timeout: directTimeout},
		policy:     cfg.Retry,
		pingPolicy: cfg.PingRetry,
	}
}

// Ping probes the ERP with a minimal read-only request. Any failure
// means "not reachable"; errors never propagate.
func (c *Client) Ping(ctx context.Context) bool {
	const op = "erp.Client.Ping"

	_, err := retry.DoWithResult(ctx, c.pingPolicy,
		func() ([]byte, error) {
			return c.get(ctx, c.pingc, productsPath+"?$top=1")
		})
	if err != nil {
		slog.Debug("erp unreachable", "op", op, "err", err)
		return false
	}
	return true
}

func (c *Client) Stock(ctx context.Context, productName string) (int, error) {
	const op = "erp.Client.Stock"

	if productName == "" {
		return 0, fmt.Errorf("%s: %w: product name is empty",
			op, domain.ErrInvalidArgument)
	}

	q := url.Values{"productName": {productName}}
	body, err := retry.DoWithResult(ctx, c.policy, func() ([]byte, error) {
		return c.get(ctx, c.httpc, stockPath+"?"+q.Encode())
	})
	if err != nil {
		return 0, opErr(op, classify(err))
	}

	var resp struct {
		ProductName string `json:"productName"`
		Stock       int    `json:"stock"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, opErr(op, fmt.Errorf("%w: %w", domain.ErrUpstreamError, err))
	}
	return resp.Stock, nil
}

func (c *Client) Stocks(
	ctx context.Context, productNames []string,
) (domain.StockLevels, error) {
	const op = "erp.Client.Stocks"

	if len(productNames) == 0 {
		return nil, fmt.Errorf("%s: %w: product names list is empty",
			op, domain.ErrInvalidArgument)
	}

	payload := map[string]any{"productNames": productNames}
	body, err := retry.DoWithResult(ctx, c.policy, func() ([]byte, error) {
		return c.post(ctx, stockBatchPath, payload)
	})
	if err != nil {
		return nil, opErr(op, classify(err))
	}

	var levels domain.StockLevels
	if err := json.Unmarshal(body, &levels); err != nil {
		return nil, opErr(op, fmt.Errorf("%w: %w", domain.ErrUpstreamError, err))
	}
	return levels, nil
}

// CreatePurchaseOrder submits the enriched order and returns the
// ERP's confirmation verbatim. Submission may not be idempotent, so
// only the generic retry policy applies; a failure here means "order
// not confirmed", never "confirmed, confirmation lost".
func (c *Client) CreatePurchaseOrder(
	ctx context.Context, po domain.PurchaseOrder,
) (json.RawMessage, error) {
	const op = "erp.Client.CreatePurchaseOrder"

	items := make([]map[string]any, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, map[string]any{
			"productId":   it.ProductID,
			"productName": it.ProductName,
			"quantity":    it.Quantity,
			"price":       it.Price,
		})
	}
	payload := map[string]any{
		"customer": map[string]any{
			"name":    po.Customer.Name,
			"email":   po.Customer.Email,
			"address": po.Customer.Address,
		},
		"items": items,
		"total": po.Total,
	}

	body, err := retry.DoWithResult(ctx, c.policy, func() ([]byte, error) {
		return c.post(ctx, purchasePath, payload)
	})
	if err != nil {
		return nil, opErr(op, classify(err))
	}
	return json.RawMessage(body), nil
}

// Submit satisfies port.OrderSubmitter with the direct HTTP path.
func (c *Client) Submit(
	ctx context.Context, po domain.PurchaseOrder,
) (json.RawMessage, error) {
	return c.CreatePurchaseOrder(ctx, po)
}

func (c *Client) OrdersByCustomerEmail(
	ctx context.Context, email string,
) ([]domain.RawRecord, error) {
	const op = "erp.Client.OrdersByCustomerEmail"

	if email == "" {
		return nil, fmt.Errorf("%s: %w: email is empty",
			op, domain.ErrInvalidArgument)
	}
	filter := fmt.Sprintf("customer/email eq '%s'", escapeODataString(email))
	return c.queryOrders(ctx, op, filter)
}

func (c *Client) OrdersByCustomerName(
	ctx context.Context, name string,
) ([]domain.RawRecord, error) {
	const op = "erp.Client.OrdersByCustomerName"

	if name == "" {
		return nil, fmt.Errorf("%s: %w: name is empty",
			op, domain.ErrInvalidArgument)
	}
	filter := fmt.Sprintf("customer/name eq '%s'", escapeODataString(name))
	return c.queryOrders(ctx, op, filter)
}

// OrdersByCustomerNameContains uses substring matching. ERP name
// records may not exactly match local spelling or casing, so callers
// fall through to this after the exact lookups come back empty.
func (c *Client) OrdersByCustomerNameContains(
	ctx context.Context, name string,
) ([]domain.RawRecord, error) {
	const op = "erp.Client.OrdersByCustomerNameContains"

	if name == "" {
		return nil, fmt.Errorf("%s: %w: name is empty",
			op, domain.ErrInvalidArgument)
	}
	filter := fmt.Sprintf("contains(customer/name,'%s')",
		escapeODataString(name))
	return c.queryOrders(ctx, op, filter)
}

func (c *Client) queryOrders(
	ctx context.Context, op, filter string,
) ([]domain.RawRecord, error) {
	qs := "$filter=" + encodeODataQuery(filter) +
		"&$expand=" + encodeODataQuery(ordersExpand)

	body, err := retry.DoWithResult(ctx, c.policy, func() ([]byte, error) {
		return c.get(ctx, c.httpc, ordersPath+"?"+qs)
	})
	if err != nil {
		return nil, opErr(op, classify(err))
	}

	records, err := decodeODataCollection(body)
	if err != nil {
		return nil, opErr(op, fmt.Errorf("%w: %w", domain.ErrUpstreamError, err))
	}
	return records, nil
}

// Products pulls the full ERP catalog.
func (c *Client) Products(ctx context.Context) ([]domain.RawRecord, error) {
	const op = "erp.Client.Products"

	body, err := retry.DoWithResult(ctx, c.policy, func() ([]byte, error) {
		return c.get(ctx, c.httpc, productsPath)
	})
	if err != nil {
		return nil, opErr(op, classify(err))
	}

	records, err := decodeODataCollection(body)
	if err != nil {
		return nil, opErr(op, fmt.Errorf("%w: %w", domain.ErrUpstreamError, err))
	}
	return records, nil
}

// ProductsDirect is the sync service's fallback catalog pull: one
// unauthenticated request on a short timeout, no retries. It exists
// as defense against the primary integration path being down while
// the plain OData endpoint is up.
func (c *Client) ProductsDirect(ctx context.Context) ([]domain.RawRecord, error) {
	const op = "erp.Client.ProductsDirect"

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+productsPath, nil)
	if err != nil {
		return nil, opErr(op, err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(c.directc, req)
	if err != nil {
		return nil, opErr(op, classify(err))
	}

	records, err := decodeODataCollection(body)
	if err != nil {
		return nil, opErr(op, fmt.Errorf("%w: %w", domain.ErrUpstreamError, err))
	}
	return records, nil
}

func (c *Client) get(
	ctx context.Context, httpc *http.Client, pathAndQuery string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	c.prepare(req)
	return c.do(httpc, req)
}

func (c *Client) post(
	ctx context.Context, path string, payload any,
) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.prepare(req)
	return c.do(c.httpc, req)
}

func (c *Client) prepare(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
}

func (c *Client) do(httpc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

// A statusError is an ERP response with a non-success status: the ERP
// was reachable but refused the request.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("erp responded %d: %s", e.code, e.body)
}

// classify folds a transport-level failure into the error taxonomy:
// a response with a bad status is ErrUpstreamError, everything else
// means the ERP could not be reached.
func classify(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamError, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}

func opErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// escapeODataString doubles single quotes per the OData literal rule.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// encodeODataQuery percent-encodes a query component. Spaces must
// become %20, not '+': the CDS OData parser rejects the form-encoded
// variant.
func encodeODataQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// decodeODataCollection accepts both response envelopes the ERP
// emits: {"value": [...]} and a raw top-level array.
func decodeODataCollection(body []byte) ([]domain.RawRecord, error) {
	var envelope struct {
		Value []domain.RawRecord `json:"value"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Value != nil {
		return envelope.Value, nil
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unexpected collection payload: %w", err)
	}
	return records, nil
}
