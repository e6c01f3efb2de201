package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument marks malformed or missing caller input.
	// Never retried, always reported back.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a locally referenced entity that is absent.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable marks an ERP that could not be reached
	// after the retry budget was exhausted.
	ErrUpstreamUnavailable = errors.New("erp unavailable")

	// ErrUpstreamError marks an ERP that answered with a failure
	// response. Surfaced, never silently swallowed.
	ErrUpstreamError = errors.New("erp error response")
)

// A StockShortfall is one under-stocked order line.
type StockShortfall struct {
	ProductName string
	Requested   int
	Available   int
}

// An InsufficientStockError is a business-rule failure, not a system
// error: it enumerates every short item so the caller can render the
// full shortfall list. Never retried.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf(
			"%s: requested %d, available %d",
			s.ProductName, s.Requested, s.Available,
		))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
