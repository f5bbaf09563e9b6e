package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

func newOrderFixture() (OrderService, *MockOrdersRepository, *MockProductsRepository) {
	orders := new(MockOrdersRepository)
	products := new(MockProductsRepository)
	svc := NewOrderService(orders, products, staticSettings{testSettings()}, nil, 5, testLogger())
	return svc, orders, products
}

func sampleOrder(userID uuid.UUID, status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20260301-ABC123",
		UserID:        userID,
		Email:         "sara@example.com",
		Status:        status,
		PaymentMethod: models.PaymentMethodCashOnDelivery,
		PaymentStatus: models.PaymentStatusPending,
		Currency:      "SAR",
		Subtotal:      dec("200"),
		ShippingCost:  dec("25"),
		TaxAmount:     dec("30"),
		Total:         dec("255"),
		ShippingAddress: models.ShippingAddress{
			FullName: "Sara Ali", Phone: "0500000000", Line1: "Olaya St", City: "Riyadh", Country: "SA",
		},
		Items: []models.OrderItem{
			{NameEn: "Kilim Rug", NameAr: "سجادة كليم", UnitPrice: dec("100"), Quantity: 2, LineTotal: dec("200")},
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("valid transition", func(t *testing.T) {
		svc, orders, products := newOrderFixture()
		order := sampleOrder(uuid.New(), models.OrderStatusPlaced)
		orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		orders.On("UpdateStatus", mock.Anything, order, models.OrderStatusConfirmed).Return(nil)

		got, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusConfirmed, got.Status)
		products.AssertNotCalled(t, "InvalidateCaches", mock.Anything)
	})

	t.Run("cancellation refreshes product caches", func(t *testing.T) {
		svc, orders, products := newOrderFixture()
		order := sampleOrder(uuid.New(), models.OrderStatusPlaced)
		orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		orders.On("UpdateStatus", mock.Anything, order, models.OrderStatusCancelled).Return(nil)
		products.On("InvalidateCaches", mock.Anything).Return()

		got, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, got.Status)
		products.AssertCalled(t, "InvalidateCaches", mock.Anything)
	})

	t.Run("invalid transition", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := sampleOrder(uuid.New(), models.OrderStatusDelivered)
		orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

		_, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusPlaced)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent change", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		order := sampleOrder(uuid.New(), models.OrderStatusPlaced)
		orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
		orders.On("UpdateStatus", mock.Anything, order, models.OrderStatusCancelled).Return(repository.ErrVersionConflict)

		_, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.ErrorContains(t, err, "concurrently")
	})

	t.Run("missing order", func(t *testing.T) {
		svc, orders, _ := newOrderFixture()
		id := uuid.New()
		orders.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

		_, err := svc.UpdateStatus(ctx, id, models.OrderStatusConfirmed)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderService_GetForCustomer(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	svc, orders, _ := newOrderFixture()
	order := sampleOrder(owner, models.OrderStatusPlaced)
	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	got, err := svc.GetForCustomer(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetForCustomer(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListForCustomer(t *testing.T) {
	userID := uuid.New()
	svc, orders, _ := newOrderFixture()
	orders.On("List", mock.Anything, mock.MatchedBy(func(f models.OrderFilter) bool {
		return f.UserID != nil && *f.UserID == userID && f.Page == 1 && f.Limit == 100
	})).Return([]models.Order{*sampleOrder(userID, models.OrderStatusPlaced)}, int64(1), nil)

	list, pagination, err := svc.ListForCustomer(context.Background(), userID, 0, 500)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), pagination.Total)
}

func TestOrderService_Stats(t *testing.T) {
	svc, orders, products := newOrderFixture()
	orders.On("Stats", mock.Anything).Return(&models.OrderStats{
		TotalOrders: 7,
		ByStatus:    map[models.OrderStatus]int64{models.OrderStatusPlaced: 7},
		Revenue:     dec("1234.50"),
	}, nil)
	products.On("CountLowStock", mock.Anything, 5).Return(int64(2), nil)
	products.On("Count", mock.Anything).Return(int64(40), nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.LowStockCount)
	assert.Equal(t, int64(40), stats.TotalProducts)
}

func TestOrderService_Invoice(t *testing.T) {
	svc, orders, _ := newOrderFixture()
	order := sampleOrder(uuid.New(), models.OrderStatusShipped)
	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	pdf, filename, err := svc.Invoice(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice-ORD-20260301-ABC123.pdf", filename)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestOrderService_Export(t *testing.T) {
	svc, orders, _ := newOrderFixture()
	orders.On("List", mock.Anything, mock.MatchedBy(func(f models.OrderFilter) bool {
		return f.Limit == -1 && f.Status == models.OrderStatusShipped
	})).Return([]models.Order{*sampleOrder(uuid.New(), models.OrderStatusShipped)}, int64(1), nil)

	data, err := svc.Export(context.Background(), models.OrderFilter{Status: models.OrderStatusShipped, Page: 3})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, orderColumns, rows[0])
	assert.Equal(t, "ORD-20260301-ABC123", rows[1][0])
	assert.Equal(t, "Shipped", rows[1][2])
	assert.Equal(t, "تم الشحن", rows[1][3])
}
