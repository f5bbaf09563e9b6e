package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"storefront-service/internal/models"
)

// OrdersRepositoryInterface defines order persistence
type OrdersRepositoryInterface interface {
	PlaceOrder(ctx context.Context, order *models.Order, promotionID *uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, order *models.Order, status models.OrderStatus) error
	Stats(ctx context.Context) (*models.OrderStats, error)
}

var _ OrdersRepositoryInterface = (*OrdersRepository)(nil)

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// PlaceOrder persists an order in one transaction: stock is decremented only
// where enough remains, the promotion use is counted, the order and its items
// are written and the ordered quantities leave the customer's cart. Lines or
// units added to the cart after it was priced stay in it.
func (r *OrdersRepository) PlaceOrder(ctx context.Context, order *models.Order, promotionID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND status = ? AND stock_quantity >= ?", item.ProductID, models.ProductStatusActive, item.Quantity).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, item.NameEn)
			}
		}

		if promotionID != nil {
			result := tx.Model(&models.Promotion{}).
				Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", *promotionID).
				Update("used_count", gorm.Expr("used_count + 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrPromotionExhausted
			}
		}

		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.CartItem{}).
				Where("user_id = ? AND product_id = ?", order.UserID, item.ProductID).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return tx.Where("user_id = ? AND quantity <= 0", order.UserID).Delete(&models.CartItem{}).Error
	})
}

func (r *OrdersRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first. A negative limit returns every match.
func (r *OrdersRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(order_number) LIKE ? OR LOWER(email) LIKE ? OR LOWER(ship_full_name) LIKE ?)", pattern, pattern, pattern)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := []models.Order{}
	query = query.Preload("Items").Order("created_at DESC")
	if filter.Limit >= 0 {
		page, limit := normalizePage(filter.Page, filter.Limit)
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, total, err
}

// UpdateStatus moves an order to status. Cancelling returns the items to stock.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, order *models.Order, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}
		if status == models.OrderStatusCancelled {
			now := time.Now()
			updates["cancelled_at"] = now
			order.CancelledAt = &now
			for _, item := range order.Items {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		}
		if status == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCashOnDelivery {
			updates["payment_status"] = models.PaymentStatusPaid
			order.PaymentStatus = models.PaymentStatusPaid
		}

		// guard against a concurrent transition from the same starting status
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}
		order.Status = status
		return nil
	})
}

// Stats aggregates dashboard counters. Cancelled orders do not count as revenue.
func (r *OrdersRepository) Stats(ctx context.Context) (*models.OrderStats, error) {
	stats := &models.OrderStats{ByStatus: make(map[models.OrderStatus]int64)}

	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}

	var revenue struct {
		Revenue decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("SUM(total) AS revenue").
		Where("status <> ?", models.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Revenue.Decimal

	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
