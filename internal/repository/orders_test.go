package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

type fixtures struct {
	userID    int64
	productID int64
}

func seedFixtures(t *testing.T, repo *Repository) fixtures {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{
		Name:         "Asha",
		Email:        fmt.Sprintf("asha-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	categoryID, err := repo.UpsertCategory(ctx, &domain.Category{Name: "Wood Carvings"})
	require.NoError(t, err)

	productID, err := repo.UpsertProduct(ctx, &domain.Product{
		Name:          "Walnut Ganesh Statue",
		Price:         100,
		OriginalPrice: 120,
		CategoryID:    categoryID,
		Artisan:       "Rajan Shakya",
		Image:         "/images/walnut-ganesh.jpg",
		Stock:         10,
		IsActive:      true,
	})
	require.NoError(t, err)

	return fixtures{userID: user.ID, productID: productID}
}

func newTestOrder(f fixtures) *domain.Order {
	return &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   fmt.Sprintf("YC-TEST-%s", uuid.NewString()[:8]),
		UserID:        f.userID,
		TotalAmount:   700,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		Address: domain.ShippingAddress{
			Street:     "12 Durbar Square Lane",
			City:       "Lalitpur",
			State:      "Bagmati",
			PostalCode: "44700",
			Country:    "Nepal",
			Phone:      "+977-9841000000",
		},
		Items: []domain.OrderItem{
			{ProductID: f.productID, Quantity: 2, Price: 100},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)

	require.NoError(t, repo.CreateOrder(ctx, order))

	fetched, err := repo.GetOrderByID(ctx, order.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.OrderNumber, fetched.OrderNumber)
	assert.Equal(t, order.TotalAmount, fetched.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, fetched.Status)
	assert.Equal(t, order.Address, fetched.Address)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "Walnut Ganesh Statue", fetched.Items[0].ProductName)
	assert.Equal(t, 100.0, fetched.Items[0].Price)

	// Stock was decremented in the same transaction.
	product, err := repo.GetProduct(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Stock)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)
	order.Items[0].Quantity = 99

	err := repo.CreateOrder(ctx, order)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The whole transaction rolled back: no order row either.
	_, err = repo.GetOrderByID(ctx, order.ID, f.userID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateOrder_DuplicateOrderNumber(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)

	order1 := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order1))

	order2 := newTestOrder(f)
	order2.OrderNumber = order1.OrderNumber
	err := repo.CreateOrder(ctx, order2)
	assert.ErrorIs(t, err, ErrDuplicateOrderNumber)
}

func TestGetOrderByID_ScopedToOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order))

	// Another user must not see it.
	_, err := repo.GetOrderByID(ctx, order.ID, f.userID+1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByUserID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)

	order1 := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order1))

	// Small sleep to ensure different created_at timestamps
	time.Sleep(10 * time.Millisecond)

	order2 := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order2))

	orders, err := repo.ListOrdersByUserID(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Newest first.
	assert.Equal(t, order2.ID, orders[0].ID)
	assert.Equal(t, order1.ID, orders[1].ID)
}

func TestCancelOrder_Idempotence(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order))

	updated, err := repo.CancelOrder(ctx, order.ID, f.userID)
	require.NoError(t, err)
	assert.True(t, updated)

	// A second cancel matches zero rows; the status stays cancelled.
	updated, err = repo.CancelOrder(ctx, order.ID, f.userID)
	require.NoError(t, err)
	assert.False(t, updated)

	fetched, err := repo.GetOrderByID(ctx, order.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, fetched.Status)
}

func TestAdvanceOrderStatus_StaleExpectation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order))

	// Order is pending; expecting shipped matches nothing.
	updated, err := repo.AdvanceOrderStatus(ctx, order.ID, domain.OrderStatusShipped, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = repo.AdvanceOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestCancelOrder_RaceWithAdvance(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order))

	// Walk the order to shipped so the advance side targets delivered.
	updated, err := repo.AdvanceOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	require.True(t, updated)
	updated, err = repo.AdvanceOrderStatus(ctx, order.ID, domain.OrderStatusConfirmed, domain.OrderStatusShipped)
	require.NoError(t, err)
	require.True(t, updated)

	var wg sync.WaitGroup
	var cancelWon, advanceWon bool

	wg.Add(2)
	go func() {
		defer wg.Done()
		won, err := repo.CancelOrder(ctx, order.ID, f.userID)
		require.NoError(t, err)
		cancelWon = won
	}()
	go func() {
		defer wg.Done()
		won, err := repo.AdvanceOrderStatus(ctx, order.ID, domain.OrderStatusShipped, domain.OrderStatusDelivered)
		require.NoError(t, err)
		advanceWon = won
	}()
	wg.Wait()

	// Exactly one conditional write wins; the loser touches zero rows.
	assert.NotEqual(t, cancelWon, advanceWon, "exactly one of cancel/advance must win")

	fetched, err := repo.GetOrderByID(ctx, order.ID, f.userID)
	require.NoError(t, err)
	if cancelWon {
		assert.Equal(t, domain.OrderStatusCancelled, fetched.Status)
	} else {
		assert.Equal(t, domain.OrderStatusDelivered, fetched.Status)
	}
}

func TestSetPaymentStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := seedFixtures(t, repo)
	order := newTestOrder(f)
	require.NoError(t, repo.CreateOrder(ctx, order))

	updated, err := repo.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusPaid)
	require.NoError(t, err)
	assert.True(t, updated)

	fetched, err := repo.GetOrderByID(ctx, order.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, fetched.PaymentStatus)

	updated, err = repo.SetPaymentStatus(ctx, uuid.New(), domain.PaymentStatusPaid)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &domain.User{Name: "Asha", Email: "dup@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, repo.CreateUser(ctx, user))

	again := &domain.User{Name: "Other", Email: "dup@example.com", PasswordHash: "y", IsActive: true}
	err := repo.CreateUser(ctx, again)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
