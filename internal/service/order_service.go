package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
	r "github.com/Shray90/YalaCarves-sub001/internal/repository"
)

// Notifier delivers order notifications to the customer. Failures are
// logged, never surfaced to the request.
type Notifier interface {
	OrderPlaced(ctx context.Context, email, name string, order *domain.Order) error
	OrderCancelled(ctx context.Context, email, name string, order *domain.Order) error
}

type CartItem struct {
	ProductID int64
	Quantity  int
}

type PlaceOrderRequest struct {
	Items   []CartItem
	Address domain.ShippingAddress
	Notes   string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, req *PlaceOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error)
	CancelOrder(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus) error
	SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error
}

type OrderServiceImpl struct {
	orders   r.OrdersRepo
	products r.ProductsRepo
	users    r.UsersRepo
	notifier Notifier
}

func NewOrderService(orders r.OrdersRepo, products r.ProductsRepo, users r.UsersRepo, notifier Notifier) *OrderServiceImpl {
	return &OrderServiceImpl{
		orders:   orders,
		products: products,
		users:    users,
		notifier: notifier,
	}
}

// PlaceOrder validates the checkout request, snapshots current product
// prices into line items, computes the total with shipping, and writes
// the order. Stock is decremented inside the same transaction.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, userID int64, req *PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateAddress(&req.Address); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, r.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, cartItem := range req.Items {
		if cartItem.Quantity <= 0 {
			return nil, invalidField("quantity", "must be a positive integer")
		}

		product, err := s.products.GetProduct(ctx, cartItem.ProductID)
		if err != nil {
			if errors.Is(err, r.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("load product %d: %w", cartItem.ProductID, err)
		}
		if !product.IsActive {
			return nil, invalidField("items", fmt.Sprintf("product %q is no longer available", product.Name))
		}

		// Price captured now; later product price changes never touch it.
		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.Image,
			Quantity:     cartItem.Quantity,
			Price:        product.Price,
		})
	}

	order := &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   newOrderNumber(),
		UserID:        userID,
		TotalAmount:   domain.ComputeTotal(items),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		Address:       req.Address,
		Notes:         req.Notes,
		Items:         items,
		CreatedAt:     time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, r.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	go func(email, name string, o domain.Order) {
		if err := s.notifier.OrderPlaced(context.Background(), email, name, &o); err != nil {
			log.Printf("failed to send order confirmation for %s: %v", o.OrderNumber, err)
		}
	}(user.Email, user.Name, *order)

	return order, nil
}

func (s *OrderServiceImpl) GetOrder(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, r.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderServiceImpl) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// CancelOrder cancels the caller's order if it is still within the
// cancellation window and not in a terminal status. The repository
// write is a single conditional update, so a racing admin advance to
// delivered cannot be overwritten: whoever loses the race updates zero
// rows.
func (s *OrderServiceImpl) CancelOrder(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, r.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !domain.IsCancellable(order.CreatedAt, order.Status, time.Now()) {
		return nil, ErrNotCancellable
	}

	updated, err := s.orders.CancelOrder(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !updated {
		// Lost the race against a concurrent status change.
		return nil, ErrNotCancellable
	}

	order.Status = domain.OrderStatusCancelled

	go func(o domain.Order) {
		user, err := s.users.GetUserByID(context.Background(), o.UserID)
		if err != nil {
			log.Printf("failed to load user for cancellation notice %s: %v", o.OrderNumber, err)
			return
		}
		if err := s.notifier.OrderCancelled(context.Background(), user.Email, user.Name, &o); err != nil {
			log.Printf("failed to send cancellation notice for %s: %v", o.OrderNumber, err)
		}
	}(*order)

	return order, nil
}

// AdvanceStatus moves an order one step forward along the fixed
// sequence. The expected current status is derived from the target, and
// the repository update is conditional on it, so a stale request or a
// concurrent cancel updates zero rows and surfaces as a conflict.
func (s *OrderServiceImpl) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus) error {
	from := previousStatus(to)
	if from == "" {
		return ErrIllegalTransition
	}

	updated, err := s.orders.AdvanceOrderStatus(ctx, orderID, from, to)
	if err != nil {
		return fmt.Errorf("advance status: %w", err)
	}
	if !updated {
		return ErrTransitionConflict
	}
	return nil
}

func (s *OrderServiceImpl) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	switch status {
	case domain.PaymentStatusPending, domain.PaymentStatusPaid, domain.PaymentStatusFailed:
	default:
		return invalidField("payment_status", "must be one of pending, paid, failed")
	}

	updated, err := s.orders.SetPaymentStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if !updated {
		return ErrOrderNotFound
	}
	return nil
}

func previousStatus(to domain.OrderStatus) domain.OrderStatus {
	for _, from := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
	} {
		if from.Next() == to {
			return from
		}
	}
	return ""
}

func validateAddress(addr *domain.ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"postal_code", addr.PostalCode},
		{"country", addr.Country},
		{"phone", addr.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return invalidField(f.name, "is required")
		}
	}
	return nil
}

func newOrderNumber() string {
	return fmt.Sprintf("YC-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.NewString()[:8]))
}
