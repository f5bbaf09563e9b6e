package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// CheckoutService prices carts and turns them into orders
type CheckoutService interface {
	Quote(ctx context.Context, userID uuid.UUID, req models.QuoteRequest) (*models.Totals, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, locale models.Locale, req models.CheckoutRequest) (*models.Order, error)
}

// CartLock runs fn while no other write to the user's cart can start
type CartLock interface {
	Exclusive(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error
}

type checkoutService struct {
	carts    repository.CartRepositoryInterface
	lock     CartLock
	orders   repository.OrdersRepositoryInterface
	products repository.ProductsRepositoryInterface
	content  repository.ContentRepositoryInterface
	users    repository.UsersRepositoryInterface
	settings SettingsService
	events   *events.Publisher
	logger   *logrus.Logger
	now      func() time.Time
}

func NewCheckoutService(
	carts repository.CartRepositoryInterface,
	lock CartLock,
	orders repository.OrdersRepositoryInterface,
	products repository.ProductsRepositoryInterface,
	content repository.ContentRepositoryInterface,
	users repository.UsersRepositoryInterface,
	settings SettingsService,
	publisher *events.Publisher,
	logger *logrus.Logger,
) CheckoutService {
	return &checkoutService{
		carts:    carts,
		lock:     lock,
		orders:   orders,
		products: products,
		content:  content,
		users:    users,
		settings: settings,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// Quote prices the current cart for a destination country and optional code
func (s *checkoutService) Quote(ctx context.Context, userID uuid.UUID, req models.QuoteRequest) (*models.Totals, error) {
	items, err := s.cartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	promo, err := s.promotion(ctx, req.PromotionCode, CartSubtotal(items))
	if err != nil {
		return nil, err
	}
	totals := CalculateTotals(items, settings, promo, req.Country)
	return &totals, nil
}

// PlaceOrder validates the request, prices the cart and writes the order.
// Stock, promotion usage and cart clearing commit together, and the cart
// stays locked against the customer's other cart writes until they have.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, locale models.Locale, req models.CheckoutRequest) (*models.Order, error) {
	address, addrErr := s.shippingAddress(ctx, userID, req)
	if err := joinValidation(validateStruct(req), addrErr); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.lock.Exclusive(ctx, userID, func(ctx context.Context) error {
		var err error
		order, err = s.placeOrder(ctx, userID, locale, req, address)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total.StringFixed(2),
	}).Info("Order placed")

	if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.WithError(err).Warn("Failed to publish order placed event")
	}
	return order, nil
}

func (s *checkoutService) placeOrder(ctx context.Context, userID uuid.UUID, locale models.Locale, req models.CheckoutRequest, address models.ShippingAddress) (*models.Order, error) {
	items, err := s.cartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		product := items[i].Product
		if product == nil || product.Status != models.ProductStatusActive {
			return nil, ErrProductInactive
		}
		if !product.InStock(items[i].Quantity) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, product.LocalizedName(locale))
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	promo, err := s.promotion(ctx, req.PromotionCode, CartSubtotal(items))
	if err != nil {
		return nil, err
	}
	totals := CalculateTotals(items, settings, promo, address.Country)

	order := s.buildOrder(userID, locale, req, address, items, totals)
	var promoID *uuid.UUID
	if promo != nil {
		promoID = &promo.ID
	}

	if err := s.orders.PlaceOrder(ctx, order, promoID); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, fmt.Errorf("%w: %v", ErrOutOfStock, err)
		case errors.Is(err, repository.ErrPromotionExhausted):
			return nil, ErrInvalidPromotion
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	s.products.InvalidateCaches(ctx)
	return order, nil
}

func (s *checkoutService) cartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.carts.ListCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	return items, nil
}

func (s *checkoutService) shippingAddress(ctx context.Context, userID uuid.UUID, req models.CheckoutRequest) (models.ShippingAddress, error) {
	if req.AddressID != nil {
		saved, err := s.users.GetAddress(ctx, userID, *req.AddressID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return models.ShippingAddress{}, ErrAddressNotFound
			}
			return models.ShippingAddress{}, err
		}
		return saved.Snapshot(), nil
	}

	address := req.Address
	address.Country = strings.ToUpper(strings.TrimSpace(address.Country))
	if err := validateStruct(address); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return address, verr.withPrefix("address")
		}
		return models.ShippingAddress{}, err
	}
	return address, nil
}

// promotion looks up and checks a code; an empty code means no promotion
func (s *checkoutService) promotion(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Promotion, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	promo, err := s.content.GetPromotionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidPromotion
		}
		return nil, err
	}
	if err := CheckPromotion(promo, subtotal, s.now()); err != nil {
		return nil, err
	}
	return promo, nil
}

func (s *checkoutService) buildOrder(userID uuid.UUID, locale models.Locale, req models.CheckoutRequest, address models.ShippingAddress, items []models.CartItem, totals models.Totals) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     NewOrderNumber(s.now()),
		UserID:          userID,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Status:          models.OrderStatusPlaced,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Currency:        totals.Currency,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.Discount,
		ShippingCost:    totals.Shipping,
		TaxAmount:       totals.Tax,
		Total:           totals.Total,
		ShippingAddress: address,
		Locale:          locale,
		Items:           make([]models.OrderItem, 0, len(items)),
	}
	if totals.PromotionCode != "" {
		code := totals.PromotionCode
		order.PromotionCode = &code
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		order.Notes = &notes
	}
	for i := range items {
		p := items[i].Product
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: p.ID,
			NameEn:    p.NameEn,
			NameAr:    p.NameAr,
			ImageURL:  p.ImageURL,
			UnitPrice: p.Price,
			Quantity:  items[i].Quantity,
			LineTotal: items[i].LineTotal().Round(2),
		})
	}
	return order
}

// NewOrderNumber formats ORD-YYYYMMDD-XXXXXX
func NewOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", t.UTC().Format("20060102"), suffix)
}

// CheckPromotion reports whether promo applies to a cart worth subtotal at t
func CheckPromotion(promo *models.Promotion, subtotal decimal.Decimal, t time.Time) error {
	switch {
	case !promo.IsActive:
		return ErrInvalidPromotion
	case promo.StartsAt != nil && t.Before(*promo.StartsAt):
		return ErrInvalidPromotion
	case promo.EndsAt != nil && !t.Before(*promo.EndsAt):
		return ErrInvalidPromotion
	case promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit:
		return ErrInvalidPromotion
	case subtotal.LessThan(promo.MinOrderAmount):
		return fmt.Errorf("%w: minimum order is %s", ErrInvalidPromotion, promo.MinOrderAmount.StringFixed(2))
	}
	return nil
}

// CartSubtotal sums price times quantity over the loaded lines
func CartSubtotal(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}
	return subtotal
}

// CalculateTotals prices a cart. The discount never exceeds the subtotal,
// shipping is free once the discounted subtotal reaches a positive
// threshold, and tax applies to the discounted subtotal.
func CalculateTotals(items []models.CartItem, settings *models.StoreSettings, promo *models.Promotion, country string) models.Totals {
	subtotal := CartSubtotal(items)

	savings := decimal.Zero
	for i := range items {
		p := items[i].Product
		if p == nil || p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) {
			continue
		}
		savings = savings.Add(p.OriginalPrice.Sub(p.Price).Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}

	discount := decimal.Zero
	code := ""
	if promo != nil {
		code = promo.Code
		switch promo.DiscountType {
		case models.DiscountTypePercentage:
			discount = subtotal.Mul(promo.Value).Div(hundred)
		case models.DiscountTypeFixed:
			discount = promo.Value
		}
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		discount = discount.Round(2)
	}

	net := subtotal.Sub(discount)
	shipping := settings.ShippingFeeFor(country)
	free := settings.FreeShippingThreshold.IsPositive() && net.GreaterThanOrEqual(settings.FreeShippingThreshold)
	if free {
		shipping = decimal.Zero
	}

	tax := net.Mul(settings.TaxRate).Div(hundred).Round(2)

	return models.Totals{
		Subtotal:      subtotal.Round(2),
		Savings:       savings.Round(2),
		Discount:      discount,
		Shipping:      shipping.Round(2),
		Tax:           tax,
		Total:         net.Add(shipping).Add(tax).Round(2),
		Currency:      settings.Currency,
		PromotionCode: code,
		FreeShipping:  free,
	}
}
