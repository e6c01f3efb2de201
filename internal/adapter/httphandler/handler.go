package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		details := make([]ShortfallDetail, len(stockErr.Shortfalls))
		for i, s := range stockErr.Shortfalls {
			details[i] = ShortfallDetail{
				ProductName: s.ProductName,
				Requested:   s.Requested,
				Available:   s.Available,
			}
		}
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: "insufficient stock", Details: details,
		})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrUpstreamError):
		log.Warn("erp request failed", "err", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: "erp request failed", Details: err.Error(),
		})
	default:
		log.Error("unhandled error", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal error",
		})
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument
	}
	return id, nil
}

type OrdersHandler struct {
	placer      port.OrderPlacer
	viewer      port.OrderViewer
	localPlacer port.LocalOrderPlacer
	updater     port.OrderStatusUpdater
}

func RegisterOrders(
	mux *http.ServeMux,
	placer port.OrderPlacer,
	viewer port.OrderViewer,
	localPlacer port.LocalOrderPlacer,
	updater port.OrderStatusUpdater,
) {
	h := OrdersHandler{placer, viewer, localPlacer, updater}
	mux.HandleFunc("POST /api/orders", h.PostOrder)
	mux.HandleFunc("POST /api/orders/local", h.PostLocalOrder)
	mux.HandleFunc("GET /api/orders/customer/{id}", h.GetCustomerOrders)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.PutOrderStatus)
}

func (h OrdersHandler) PostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PostOrder"
	log := slog.With("op", op)

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	items := make([]port.PlaceOrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = port.PlaceOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		}
	}

	placed, err := h.placer.PlaceOrder(r.Context(), req.CustomerID, items)
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("order placed", "customerID", req.CustomerID, "nItems", len(items))
	writeJSON(w, http.StatusCreated, OrderPlacedResponse{
		Success: true, ERP: placed.Confirmation,
	})
}

func (h OrdersHandler) PostLocalOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PostLocalOrder"
	log := slog.With("op", op)

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	items := make([]port.PlaceOrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = port.PlaceOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	}

	order, err := h.localPlacer.PlaceLocalOrder(r.Context(), req.CustomerID, items)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderView(order))
}

func (h OrdersHandler) GetCustomerOrders(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetCustomerOrders"
	log := slog.With("op", op)

	customerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, log, err)
		return
	}

	history, err := h.viewer.CustomerOrders(r.Context(), customerID)
	if err != nil {
		writeError(w, log, err)
		return
	}

	if history.Degraded {
		writeJSON(w, http.StatusOK, DegradedOrdersResponse{
			ERPUnreachable: true,
			Orders:         toOrderViews(history.Orders),
		})
		return
	}
	writeJSON(w, http.StatusOK, toOrderViews(history.Orders))
}

func (h OrdersHandler) PutOrderStatus(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PutOrderStatus"
	log := slog.With("op", op)

	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, log, err)
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	order, err := h.updater.UpdateOrderStatus(
		r.Context(), orderID, domain.Status(req.Status))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderView(order))
}
