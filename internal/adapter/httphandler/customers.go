package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

type CustomersHandler struct {
	registrar port.CustomerRegistrar
}

func RegisterCustomers(mux *http.ServeMux, registrar port.CustomerRegistrar) {
	h := CustomersHandler{registrar}
	mux.HandleFunc("POST /api/customers/register", h.PostRegister)
	mux.HandleFunc("POST /api/customers/login", h.PostLogin)
	mux.HandleFunc("GET /api/customers/{id}", h.GetCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.PutCustomer)
}

func (h CustomersHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	const op = "CustomersHandler.PostRegister"
	log := slog.With("op", op)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	created, err := h.registrar.Register(r.Context(), domain.Customer{
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("customer registered", "customerID", created.ID)
	writeJSON(w, http.StatusCreated, toCustomerView(created))
}

func (h CustomersHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	const op = "CustomersHandler.PostLogin"
	log := slog.With("op", op)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	customer, err := h.registrar.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error: "invalid email or password",
			})
			return
		}
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(customer))
}

func (h CustomersHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	const op = "CustomersHandler.GetCustomer"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, log, err)
		return
	}

	customer, orders, err := h.registrar.CustomerWithOrders(r.Context(), id)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, CustomerWithOrdersView{
		CustomerView: toCustomerView(customer),
		Orders:       toOrderViews(orders),
	})
}

func (h CustomersHandler) PutCustomer(w http.ResponseWriter, r *http.Request) {
	const op = "CustomersHandler.PutCustomer"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, log, err)
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse JSON", "err", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON data"})
		return
	}

	updated, err := h.registrar.UpdateProfile(r.Context(), domain.Customer{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(updated))
}
