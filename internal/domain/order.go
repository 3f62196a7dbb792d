package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a step in the order lifecycle.
type OrderStatus string

// Order statuses in progression order. Cancelled is absorbing.
const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusPacked         OrderStatus = "packed"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var statusProgression = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// ValidStatuses returns every known status, cancelled last.
func ValidStatuses() []OrderStatus {
	out := make([]OrderStatus, 0, len(statusProgression)+1)
	out = append(out, statusProgression...)
	return append(out, OrderStatusCancelled)
}

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusCancelled || s.Rank() >= 0
}

// Rank is the position of s in the progression, or -1 for cancelled and
// unknown statuses.
func (s OrderStatus) Rank() int {
	for i, st := range statusProgression {
		if st == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsPending reports whether an order in this status blocks a new order for
// the same shopper.
func (s OrderStatus) IsPending() bool {
	return s.IsValid() && !s.IsTerminal()
}

// CanTransitionTo reports whether the order may move from s to target:
// forward along the progression, or to cancelled from any non-terminal status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() || !s.IsValid() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	return target.Rank() > s.Rank()
}

// PaymentMethod selects the checkout branch.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCard || m == PaymentMethodCashOnDelivery
}

// Order is the client's read projection of a server order.
type Order struct {
	ID                    int64           `json:"id"`
	OrderNumber           string          `json:"order_number"`
	Status                OrderStatus     `json:"status"`
	StatusDisplay         string          `json:"status_display,omitempty"`
	IsPaid                bool            `json:"is_paid"`
	PaymentMethod         PaymentMethod   `json:"payment_method,omitempty"`
	ShippingAddress       string          `json:"shipping_address,omitempty"`
	ShippingCity          string          `json:"shipping_city,omitempty"`
	ShippingState         string          `json:"shipping_state,omitempty"`
	ShippingZip           string          `json:"shipping_zip,omitempty"`
	ShippingCountry       string          `json:"shipping_country,omitempty"`
	ShippingPhone         string          `json:"shipping_phone,omitempty"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	PromoCode             string          `json:"promo_code,omitempty"`
	CustomerNotes         string          `json:"customer_notes,omitempty"`
	TrackingNumber        string          `json:"tracking_number,omitempty"`
	CourierService        string          `json:"courier_service,omitempty"`
	Items                 []OrderItem     `json:"items,omitempty"`
	ItemsCount            int             `json:"items_count,omitempty"`
	EstimatedDeliveryDays int             `json:"estimated_delivery_days,omitempty"`
	CanBeCancelled        bool            `json:"can_be_cancelled"`
	CanBeReturned         bool            `json:"can_be_returned"`
	CreatedAt             *time.Time      `json:"created_at,omitempty"`
	ConfirmedAt           *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt             *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt           *time.Time      `json:"delivered_at,omitempty"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID           int64           `json:"id"`
	Product      int64           `json:"product"`
	ProductTitle string          `json:"product_title,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// CanCancel reports whether the shopper may still cancel the order. The
// backend flag is authoritative; the status check keeps terminal orders
// from being offered a cancel action on stale data.
func (o *Order) CanCancel() bool {
	return o.CanBeCancelled && !o.Status.IsTerminal()
}

// IsPending reports whether the order blocks placing a new one.
func (o *Order) IsPending() bool {
	return o.Status.IsPending()
}

// OrderLine is a {product_id, quantity} entry of an order placement request.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// TrackingEvent is one step of the public tracking timeline.
type TrackingEvent struct {
	Status      OrderStatus `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Date        *time.Time  `json:"date,omitempty"`
	Completed   bool        `json:"completed"`
}

// Tracking is the response of the public order lookup.
type Tracking struct {
	Order    Order           `json:"order"`
	Timeline []TrackingEvent `json:"timeline"`
}
