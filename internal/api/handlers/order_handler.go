package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/shop-microservices/internal/api/middleware"
	"github.com/Cheertaboi/shop-microservices/internal/models"
	"github.com/Cheertaboi/shop-microservices/internal/service"
	"github.com/Cheertaboi/shop-microservices/internal/validation"
)

type OrderHandler struct {
	svc *service.OrderService
	log *slog.Logger
}

func NewOrderHandler(svc *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

type createOrderRequest struct {
	ShippingAddress *models.Address `json:"shippingAddress,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, validation.OrderCreate, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, _ := middleware.PrincipalFrom(r.Context())
	o, err := h.svc.CreateOrder(r.Context(), p, middleware.CredentialFrom(r.Context()), req.ShippingAddress)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// ListMine handles GET /api/orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	orders, err := h.svc.ListOrdersForUser(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// ListAll handles GET /api/orders/admin/all (admin)
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAllOrders(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	o, err := h.svc.GetOrder(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// SetStatus handles PUT /api/orders/{id}/status (admin)
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, validation.OrderStatus, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	o, err := h.svc.SetOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
