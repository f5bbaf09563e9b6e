package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// OrderService covers customer order history and back-office order handling
type OrderService interface {
	ListForCustomer(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, *models.PaginationInfo, error)
	GetForCustomer(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)

	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, *models.PaginationInfo, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
	Invoice(ctx context.Context, orderID uuid.UUID) ([]byte, string, error)
	Export(ctx context.Context, filter models.OrderFilter) ([]byte, error)
}

type orderService struct {
	orders        repository.OrdersRepositoryInterface
	products      repository.ProductsRepositoryInterface
	settings      SettingsService
	events        *events.Publisher
	lowStockLimit int
	logger        *logrus.Logger
}

func NewOrderService(
	orders repository.OrdersRepositoryInterface,
	products repository.ProductsRepositoryInterface,
	settings SettingsService,
	publisher *events.Publisher,
	lowStockLimit int,
	logger *logrus.Logger,
) OrderService {
	return &orderService{
		orders:        orders,
		products:      products,
		settings:      settings,
		events:        publisher,
		lowStockLimit: lowStockLimit,
		logger:        logger,
	}
}

func (s *orderService) ListForCustomer(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, *models.PaginationInfo, error) {
	return s.List(ctx, models.OrderFilter{UserID: &userID, Page: page, Limit: limit})
}

// GetForCustomer hides other customers' orders behind ErrOrderNotFound
func (s *orderService) GetForCustomer(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, *models.PaginationInfo, error) {
	page, limit := pageOrDefault(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page, limit

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return orders, models.NewPaginationInfo(page, limit, total), nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateStatus applies one lifecycle transition and publishes it
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateOrderStatusTransition(order.Status, status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	oldStatus := order.Status
	if err := s.orders.UpdateStatus(ctx, order, status); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if status == models.OrderStatusCancelled {
		// cancelled items went back to stock
		s.products.InvalidateCaches(ctx)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"from":         oldStatus,
		"to":           status,
	}).Info("Order status updated")

	if err := s.events.PublishOrderStatusChanged(ctx, order, oldStatus); err != nil {
		s.logger.WithError(err).Warn("Failed to publish order status event")
	}
	return order, nil
}

// Stats combines order counters with catalog stock counters
func (s *orderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.products.CountLowStock(ctx, s.lowStockLimit); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *orderService) Invoice(ctx context.Context, orderID uuid.UUID) ([]byte, string, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, "", err
	}
	pdf, err := RenderInvoice(order, settings)
	if err != nil {
		return nil, "", err
	}
	return pdf, InvoiceFilename(order), nil
}

// Export writes every order matching filter, ignoring pagination
func (s *orderService) Export(ctx context.Context, filter models.OrderFilter) ([]byte, error) {
	filter.Page, filter.Limit = 1, -1
	orders, _, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return OrdersWorkbook(orders)
}

func pageOrDefault(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
