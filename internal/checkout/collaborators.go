package checkout

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/api"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
)

// OrderAPI is the backend surface the orchestrator needs.
type OrderAPI interface {
	PendingOrders(ctx context.Context) ([]domain.Order, error)
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*api.PlaceOrderResult, error)
}

// Navigator moves the shopper to another view.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a message for the shopper.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier shows notifications to the shopper.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// CardPaymentRequest is what the card widget is handed.
type CardPaymentRequest struct {
	Amount   decimal.Decimal
	OrderRef string
	Shipping domain.ShippingForm
}

// CardPaymentResult is the widget's success callback payload.
type CardPaymentResult struct {
	PaymentID   string
	OrderID     int64
	OrderNumber string
	Amount      decimal.Decimal
}

// CardPaymentFlow collects card details and confirms the payment. A nil
// error is the success callback; an error is the failure callback.
type CardPaymentFlow interface {
	Start(ctx context.Context, req CardPaymentRequest) (*CardPaymentResult, error)
}

// Paths the orchestrator navigates to.
const (
	PathCart   = "/cart"
	PathOrders = "/orders"
)

// OrderPath is the detail view of an order.
func OrderPath(id int64) string {
	return PathOrders + "/" + strconv.FormatInt(id, 10)
}

// PaymentSuccessPath is the view shown after a confirmed card payment.
func PaymentSuccessPath(paymentID string) string {
	return "/payment-success/" + paymentID
}
