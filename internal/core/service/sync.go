package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.ProductSyncer = (*SyncService)(nil)

// SyncService mirrors the ERP product catalog into the local store.
// The local table is a cache: a sync replaces it wholesale so stale
// rows never survive a rename or a deletion upstream.
type SyncService struct {
	gateway  port.ERPGateway
	products port.ProductRepository
}

func NewSyncService(gateway port.ERPGateway, products port.ProductRepository) SyncService {
	return SyncService{gateway: gateway, products: products}
}

func (s SyncService) SyncFromERP(ctx context.Context) (port.SyncReport, error) {
	const op = "SyncService.SyncFromERP"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return port.SyncReport{}, fmt.Errorf("%s: %w", op, err)
	}

	raws, err := s.gateway.Products(ctx)
	if err != nil {
		log.Warn("authenticated product fetch failed, trying direct endpoint",
			"err", err)
		raws, err = s.gateway.ProductsDirect(ctx)
		if err != nil {
			return port.SyncReport{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	products := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		p, ok := productFromRecord(raw)
		if !ok {
			log.Warn("skipping product record without a usable name", "record", raw)
			continue
		}
		products = append(products, p)
	}

	if err := s.products.ReplaceCatalog(ctx, products); err != nil {
		return port.SyncReport{}, fmt.Errorf("%s: %w", op, err)
	}

	report := port.SyncReport{Synced: len(products), Total: len(raws)}
	log.Info("product catalog synced", "synced", report.Synced, "total", report.Total)
	return report, nil
}

// productFromRecord maps an ERP product record to the local shape.
// Records qualify by name; a nameless record with a productID gets
// the id as its name, anything else is skipped.
func productFromRecord(raw domain.RawRecord) (domain.Product, bool) {
	name := asString(raw["name"])
	if name == "" {
		name = asString(raw["productID"])
	}
	if name == "" {
		return domain.Product{}, false
	}

	return domain.Product{
		Name:        name,
		Description: asString(raw["description"]),
		Price:       asFloat(raw["price"]),
		Stock:       int(asFloat(raw["stock"])),
	}, true
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
