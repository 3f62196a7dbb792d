package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses reported by the backend.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// CartCheckoutRef asks the payment endpoint to create the order from the
// shopper's current cart.
const CartCheckoutRef = "cart-checkout"

// Payment is a card payment record.
type Payment struct {
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Status        string          `json:"status"`
	ClientSecret  string          `json:"stripe_client_secret,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// Succeeded reports whether the payment settled.
func (p *Payment) Succeeded() bool {
	return p.Status == PaymentStatusSucceeded
}

// PaymentIntent is what the card widget needs to collect and confirm a card.
type PaymentIntent struct {
	PaymentID    string          `json:"payment_id"`
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	OrderID      int64           `json:"order_id,omitempty"`
	OrderNumber  string          `json:"order_number,omitempty"`
}

// PaymentOrderSummary is the order projection returned with a payment status.
type PaymentOrderSummary struct {
	OrderNumber string          `json:"order_number"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
