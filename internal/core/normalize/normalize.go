// Package normalize maps heterogeneous ERP payload shapes to the
// canonical domain types. The ERP's schema surface is not uniform
// across integration paths (OData expansion vs. direct RPC), so every
// logical field is resolved through an ordered chain of candidate
// extractors applied until one yields a defined value. The chains are
// package-level values so the priority order stays auditable.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/webshop/backend/internal/core/domain"
)

// An extractor yields a candidate value for one logical field.
type extractor func(domain.RawRecord) (any, bool)

func key(k string) extractor {
	return func(r domain.RawRecord) (any, bool) {
		v, ok := r[k]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
}

// firstMatch applies extractors in priority order and returns the
// first defined value.
func firstMatch(r domain.RawRecord, chain []extractor) (any, bool) {
	for _, ex := range chain {
		if v, ok := ex(r); ok {
			return v, true
		}
	}
	return nil, false
}

var (
	orderIDChain = []extractor{
		key("ID"), key("id"), key("orderID"), key("orderId"),
		key("orderNumber"),
	}
	createdChain = []extractor{
		key("createdAt"), key("created_at"), key("creationDate"),
		key("modifiedAt"),
	}
	// Flat status fields take priority over the structured one;
	// statusValue skips map-shaped candidates until the flat keys
	// are exhausted.
	statusChain = []extractor{
		key("status"), key("orderStatus"), key("status_code"),
	}
	totalChain = []extractor{
		key("total"), key("totalAmount"), key("total_amount"),
		key("grandTotal"),
	}
	itemsChain = []extractor{
		key("items"), key("Items"),
	}
	itemNameChain = []extractor{
		key("productName"), key("product_name"), key("name"),
	}
	itemRefChain = []extractor{
		key("product_ID"), key("productID"), key("product_id"),
		key("productId"), key("product"),
	}
	quantityChain = []extractor{
		key("quantity"), key("qty"), key("amount"),
	}
	priceChain = []extractor{
		key("price"), key("unitPrice"), key("unit_price"),
		key("netAmount"),
	}
)

// Status maps a raw ERP order status to the canonical enum. Numbers,
// strings and structured objects are accepted; anything unrecognized
// (nil included) defaults to pending. The lossy default is deliberate:
// the ERP's status vocabulary is open-ended and a wrong "pending" is
// recoverable on the next poll.
func Status(raw any) domain.Status {
	if m, ok := toRecord(raw); ok {
		if v, ok := m["status"]; ok && v != nil {
			raw = v
		} else if v, ok := m["code"]; ok && v != nil {
			raw = v
		} else {
			return domain.StatusPending
		}
		if _, nested := toRecord(raw); nested {
			return domain.StatusPending
		}
	}

	switch v := normalizeScalar(raw); v {
	case "10", "new":
		return domain.StatusPending
	case "20", "picked":
		return domain.StatusPicked
	case "30", "shipped":
		return domain.StatusShipped
	case "40", "completed":
		return domain.StatusCompleted
	case "-10", "canceled":
		return domain.StatusCanceled
	default:
		return domain.StatusPending
	}
}

// statusValue resolves the raw status candidate. A map-shaped value
// under an early key must not shadow a flat field under a later one,
// so the structured candidate is only used once every flat key came
// up empty.
func statusValue(r domain.RawRecord) (any, bool) {
	var structured any
	for _, ex := range statusChain {
		v, ok := ex(r)
		if !ok {
			continue
		}
		if _, isMap := toRecord(v); isMap {
			if structured == nil {
				structured = v
			}
			continue
		}
		return v, true
	}
	if structured != nil {
		return structured, true
	}
	return nil, false
}

// Order maps one raw ERP order record to the canonical order shape.
func Order(raw domain.RawRecord) domain.Order {
	var o domain.Order

	if v, ok := firstMatch(raw, orderIDChain); ok {
		o.ID = toString(v)
	}
	if v, ok := firstMatch(raw, createdChain); ok {
		o.CreatedAt = toTime(v)
	}

	if v, ok := statusValue(raw); ok {
		o.Status = Status(v)
	} else {
		o.Status = domain.StatusPending
	}

	if v, ok := firstMatch(raw, totalChain); ok {
		o.Total = toFloat(v)
	}

	if v, ok := firstMatch(raw, itemsChain); ok {
		if rawItems, ok := v.([]any); ok {
			for _, ri := range rawItems {
				if item, ok := toRecord(ri); ok {
					o.Items = append(o.Items, orderItem(item))
				}
			}
		}
	}

	return o
}

func orderItem(raw domain.RawRecord) domain.OrderItem {
	var it domain.OrderItem

	it.ProductName = productName(raw)

	if v, ok := firstMatch(raw, itemRefChain); ok {
		it.ProductID = toString(v)
	}
	if v, ok := firstMatch(raw, quantityChain); ok {
		it.Quantity = toInt(v)
	}
	if v, ok := firstMatch(raw, priceChain); ok {
		it.Price = toFloat(v)
	}

	return it
}

// productName resolves an item's display name: the expanded product
// sub-record first (object or one-element array), then flat name
// fields, then a synthetic placeholder from the raw product ref.
func productName(raw domain.RawRecord) string {
	if sub, ok := productRecord(raw["product"]); ok {
		if v, ok := firstMatch(sub, itemNameChain); ok {
			return toString(v)
		}
	}

	if v, ok := firstMatch(raw, itemNameChain); ok {
		return toString(v)
	}

	if v, ok := firstMatch(raw, itemRefChain); ok {
		if s := toString(v); s != "" {
			return "product-" + s
		}
	}
	return "product-unknown"
}

func productRecord(v any) (domain.RawRecord, bool) {
	if v == nil {
		return nil, false
	}
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil, false
		}
		v = arr[0]
	}
	return toRecord(v)
}

func toRecord(v any) (domain.RawRecord, bool) {
	switch m := v.(type) {
	case domain.RawRecord:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// normalizeScalar folds numeric and string raw values into the
// comparable string form used by the mapping table. JSON numbers
// arrive as float64.
func normalizeScalar(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case float32:
		return strconv.FormatInt(int64(n), 10)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case string:
		return strings.ToLower(strings.TrimSpace(n))
	default:
		return ""
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// toTime parses the handful of timestamp layouts the ERP emits.
func toTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
