package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
	r "github.com/Shray90/YalaCarves-sub001/internal/repository"
)

// MockOrdersRepo implements r.OrdersRepo for testing
type MockOrdersRepo struct {
	CreatedOrder   *domain.Order
	CreateErr      error
	Order          *domain.Order
	GetErr         error
	Orders         []*domain.Order
	ListErr        error
	CancelUpdated  bool
	CancelErr      error
	CancelCalls    int
	AdvanceUpdated bool
	AdvanceErr     error
	AdvanceFrom    domain.OrderStatus
	AdvanceTo      domain.OrderStatus
	PaymentUpdated bool
	PaymentErr     error
}

func (m *MockOrdersRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.CreatedOrder = order
	return m.CreateErr
}

func (m *MockOrdersRepo) GetOrderByID(_ context.Context, _ uuid.UUID, _ int64) (*domain.Order, error) {
	return m.Order, m.GetErr
}

func (m *MockOrdersRepo) ListOrdersByUserID(_ context.Context, _ int64) ([]*domain.Order, error) {
	return m.Orders, m.ListErr
}

func (m *MockOrdersRepo) CancelOrder(_ context.Context, _ uuid.UUID, _ int64) (bool, error) {
	m.CancelCalls++
	return m.CancelUpdated, m.CancelErr
}

func (m *MockOrdersRepo) AdvanceOrderStatus(_ context.Context, _ uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	m.AdvanceFrom = from
	m.AdvanceTo = to
	return m.AdvanceUpdated, m.AdvanceErr
}

func (m *MockOrdersRepo) SetPaymentStatus(_ context.Context, _ uuid.UUID, _ domain.PaymentStatus) (bool, error) {
	return m.PaymentUpdated, m.PaymentErr
}

// MockProductsRepo implements r.ProductsRepo for testing
type MockProductsRepo struct {
	Products map[int64]*domain.Product
	Err      error
}

func (m *MockProductsRepo) ListProducts(_ context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	for _, p := range m.Products {
		products = append(products, p)
	}
	return products, m.Err
}

func (m *MockProductsRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	product, exists := m.Products[id]
	if !exists {
		return nil, r.ErrProductNotFound
	}
	return product, nil
}

func (m *MockProductsRepo) ListCategories(_ context.Context) ([]*domain.Category, error) {
	return nil, m.Err
}

// MockUsersRepo implements r.UsersRepo for testing
type MockUsersRepo struct {
	Users        map[int64]*domain.User
	UsersByEmail map[string]*domain.User
	CreateErr    error
	Created      *domain.User
	LastLoginIDs []int64
}

func (m *MockUsersRepo) CreateUser(_ context.Context, user *domain.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	user.ID = int64(len(m.Users) + 1)
	m.Created = user
	return nil
}

func (m *MockUsersRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	user, exists := m.UsersByEmail[email]
	if !exists {
		return nil, r.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUsersRepo) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	user, exists := m.Users[id]
	if !exists {
		return nil, r.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUsersRepo) UpdateLastLogin(_ context.Context, id int64) error {
	m.LastLoginIDs = append(m.LastLoginIDs, id)
	return nil
}

// MockNotifier records notification calls; safe for the async sends.
type MockNotifier struct {
	mu        sync.Mutex
	Placed    int
	Cancelled int
}

func (m *MockNotifier) OrderPlaced(_ context.Context, _, _ string, _ *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Placed++
	return nil
}

func (m *MockNotifier) OrderCancelled(_ context.Context, _, _ string, _ *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled++
	return nil
}

func newTestOrderService(orders *MockOrdersRepo, products *MockProductsRepo, users *MockUsersRepo) *OrderServiceImpl {
	if users.Users == nil {
		users.Users = map[int64]*domain.User{
			1: {ID: 1, Name: "Asha", Email: "asha@example.com", IsActive: true},
		}
	}
	return NewOrderService(orders, products, users, &MockNotifier{})
}
