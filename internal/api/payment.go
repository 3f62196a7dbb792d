package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
)

// PaymentAPI binds the /payments/ endpoints.
type PaymentAPI struct {
	r Requester
}

// NewPaymentAPI creates the payment bindings.
func NewPaymentAPI(r Requester) *PaymentAPI {
	return &PaymentAPI{r: r}
}

// CreatePaymentIntent asks the backend for a card payment intent. orderRef
// is an order id, or domain.CartCheckoutRef to create the order from the cart.
func (a *PaymentAPI) CreatePaymentIntent(ctx context.Context, orderRef string) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	if err := a.r.Post(ctx, "/payments/create-payment-intent/", map[string]string{"order_id": orderRef}, &intent); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &intent, nil
}

// ConfirmPaymentResult is the backend's view after a card confirmation.
type ConfirmPaymentResult struct {
	Message     string             `json:"message"`
	Payment     domain.Payment     `json:"payment"`
	OrderStatus domain.OrderStatus `json:"order_status"`
}

// ConfirmPayment tells the backend the processor confirmed intentID.
func (a *PaymentAPI) ConfirmPayment(ctx context.Context, intentID, paymentID string) (*ConfirmPaymentResult, error) {
	body := map[string]string{"payment_intent_id": intentID, "payment_id": paymentID}
	var result ConfirmPaymentResult
	if err := a.r.Post(ctx, "/payments/confirm-payment/", body, &result); err != nil {
		return nil, fmt.Errorf("confirm payment %s: %w", paymentID, err)
	}
	return &result, nil
}

// PaymentStatusResult pairs a payment with its order summary.
type PaymentStatusResult struct {
	Payment domain.Payment             `json:"payment"`
	Order   domain.PaymentOrderSummary `json:"order"`
}

// PaymentStatus fetches one payment.
func (a *PaymentAPI) PaymentStatus(ctx context.Context, paymentID string) (*PaymentStatusResult, error) {
	var result PaymentStatusResult
	if err := a.r.Get(ctx, "/payments/payment-status/"+url.PathEscape(paymentID)+"/", nil, &result); err != nil {
		return nil, fmt.Errorf("payment status %s: %w", paymentID, err)
	}
	return &result, nil
}

// UserPayments lists the shopper's payments.
func (a *PaymentAPI) UserPayments(ctx context.Context) ([]domain.Payment, error) {
	var resp struct {
		Payments []domain.Payment `json:"payments"`
	}
	if err := a.r.Get(ctx, "/payments/user-payments/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if resp.Payments == nil {
		resp.Payments = []domain.Payment{}
	}
	return resp.Payments, nil
}

// StripeConfig returns the publishable key for the card widget. The
// endpoint is public.
func (a *PaymentAPI) StripeConfig(ctx context.Context) (string, error) {
	var resp struct {
		PublishableKey string `json:"publishable_key"`
	}
	if err := a.r.Get(ctx, "/payments/stripe-config/", nil, &resp); err != nil {
		return "", fmt.Errorf("stripe config: %w", err)
	}
	return resp.PublishableKey, nil
}
