package domain

// A Product row in the local store. Name is the reconciliation key
// against the ERP catalog; the local id means nothing to the ERP.
// An ERP-side rename therefore orphans the local row — a known
// defect of the name-keyed join, kept for wire compatibility.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Stock       int
}

// A Customer of the webshop. Email is the reconciliation key for ERP
// order lookups. The password is stored and compared verbatim; known
// deficiency, out of scope to fix.
type Customer struct {
	ID       int64
	Name     string
	Email    string
	Address  string
	Password string
}

// StockLevels maps product name to available quantity as reported by
// the ERP. A missing name means zero available, never unlimited.
type StockLevels map[string]int

func (s StockLevels) Available(name string) int {
	return s[name]
}
