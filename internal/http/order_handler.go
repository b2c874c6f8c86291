package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
	"github.com/Shray90/YalaCarves-sub001/internal/service"
)

type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type CartItemDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderRequestDTO struct {
	Items   []CartItemDTO          `json:"items"`
	Address domain.ShippingAddress `json:"address"`
	Notes   string                 `json:"notes"`
}

type OrderItemDTO struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

type OrderResponseDTO struct {
	ID            string                 `json:"id"`
	OrderNumber   string                 `json:"order_number"`
	TotalAmount   float64                `json:"total_amount"`
	Status        string                 `json:"status"`
	StatusDisplay domain.Badge           `json:"status_display"`
	PaymentStatus string                 `json:"payment_status"`
	PaymentMethod string                 `json:"payment_method"`
	Cancellable   bool                   `json:"cancellable"`
	Address       domain.ShippingAddress `json:"address"`
	Notes         string                 `json:"notes,omitempty"`
	Items         []OrderItemDTO         `json:"items"`
	CreatedAt     string                 `json:"created_at"`
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}

	return OrderResponseDTO{
		ID:            o.ID.String(),
		OrderNumber:   o.OrderNumber,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		StatusDisplay: domain.StatusDisplay(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: o.PaymentMethod,
		Cancellable:   domain.IsCancellable(o.CreatedAt, o.Status, time.Now()),
		Address:       o.Address,
		Notes:         o.Notes,
		Items:         items,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	items := make([]service.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.PlaceOrder(r.Context(), userID, &service.PlaceOrderRequest{
		Items:   items,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, convertOrder(order))
}

// GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

// POST /api/v1/orders/{order_id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), userID, orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// PUT /api/v1/admin/orders/{order_id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orders.AdvanceStatus(r.Context(), orderID, domain.OrderStatus(req.Status)); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type UpdatePaymentRequestDTO struct {
	PaymentStatus string `json:"payment_status"`
}

// PUT /api/v1/admin/orders/{order_id}/payment
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orders.SetPaymentStatus(r.Context(), orderID, domain.PaymentStatus(req.PaymentStatus)); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"payment_status": req.PaymentStatus})
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "order_id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return uuid.Nil, false
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid UUID")
		return uuid.Nil, false
	}
	return orderID, true
}
