package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

type ProductsHandler struct {
	cataloger port.ProductCataloger
	syncer    port.ProductSyncer
	prober    port.ERPProber
}

func RegisterProducts(
	mux *http.ServeMux,
	cataloger port.ProductCataloger,
	syncer port.ProductSyncer,
	prober port.ERPProber,
) {
	h := ProductsHandler{cataloger, syncer, prober}
	mux.HandleFunc("GET /api/products", h.GetProducts)
	mux.HandleFunc("GET /api/products/stocks", h.GetStocks)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/products", h.PostProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)
	mux.HandleFunc("POST /api/products/sync", h.PostSync)
	mux.HandleFunc("GET /api/erp/status", h.GetERPStatus)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProducts"
	log := slog.With("op", op)

	products, err := h.cataloger.Products(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = toProductView(p)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, log, err)
		return
	}

	p, err := h.cataloger.Product(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func (h ProductsHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostProduct"
	log := slog.With("op", op)

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	created, err := h.cataloger.CreateProduct(r.Context(), domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(created))
}

func (h ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.DeleteProduct"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, log, err)
		return
	}

	if err := h.cataloger.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStocks proxies live stock levels for a comma separated list of
// product names.
func (h ProductsHandler) GetStocks(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetStocks"
	log := slog.With("op", op)

	var names []string
	for _, n := range strings.Split(r.URL.Query().Get("names"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "names query parameter is required",
		})
		return
	}

	levels, err := h.cataloger.Stocks(r.Context(), names)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h ProductsHandler) PostSync(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostSync"
	log := slog.With("op", op)

	report, err := h.syncer.SyncFromERP(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("catalog synced", "synced", report.Synced, "total", report.Total)
	writeJSON(w, http.StatusOK, SyncResponse{
		Success: true, Synced: report.Synced, Total: report.Total,
	})
}

func (h ProductsHandler) GetERPStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ERPStatusResponse{
		Reachable: h.prober.Ping(r.Context()),
	})
}
