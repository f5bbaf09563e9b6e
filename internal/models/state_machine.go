package models

import "fmt"

// ValidOrderTransitions defines valid state transitions for OrderStatus
// Flow: PLACED → CONFIRMED → PROCESSING → SHIPPED → DELIVERED
// CANCELLED can be reached from any non-terminal state before delivery
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionOrderStatus checks if a transition from one order status to another is valid
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	validTransitions, exists := ValidOrderTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// ValidateOrderStatusTransition returns an error if the transition is invalid
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return fmt.Errorf("invalid order status transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal reports whether no further transitions exist
func (s OrderStatus) IsTerminal() bool {
	return len(ValidOrderTransitions[s]) == 0
}

// StatusBadge is how an order status is rendered in lists
type StatusBadge struct {
	Status  OrderStatus `json:"status"`
	Variant string      `json:"variant"`
	LabelEn string      `json:"labelEn"`
	LabelAr string      `json:"labelAr"`
}

var orderStatusBadges = map[OrderStatus]StatusBadge{
	OrderStatusPlaced:     {Variant: "warning", LabelEn: "Pending", LabelAr: "قيد الانتظار"},
	OrderStatusConfirmed:  {Variant: "info", LabelEn: "Confirmed", LabelAr: "مؤكد"},
	OrderStatusProcessing: {Variant: "info", LabelEn: "Processing", LabelAr: "قيد التجهيز"},
	OrderStatusShipped:    {Variant: "primary", LabelEn: "Shipped", LabelAr: "تم الشحن"},
	OrderStatusDelivered:  {Variant: "success", LabelEn: "Delivered", LabelAr: "تم التوصيل"},
	OrderStatusCancelled:  {Variant: "destructive", LabelEn: "Cancelled", LabelAr: "ملغي"},
}

// BadgeFor maps a status to its badge. Unknown statuses render as a neutral badge
// labelled with the raw status.
func BadgeFor(status OrderStatus) StatusBadge {
	badge, ok := orderStatusBadges[status]
	if !ok {
		return StatusBadge{Status: status, Variant: "secondary", LabelEn: string(status), LabelAr: string(status)}
	}
	badge.Status = status
	return badge
}

// Label returns the badge label for the locale
func (b StatusBadge) Label(locale Locale) string {
	return locale.Pick(b.LabelEn, b.LabelAr)
}
