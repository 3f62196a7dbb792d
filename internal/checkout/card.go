package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/api"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

// PaymentAPI is the backend surface the card flow needs.
type PaymentAPI interface {
	CreatePaymentIntent(ctx context.Context, orderRef string) (*domain.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID, paymentID string) (*api.ConfirmPaymentResult, error)
}

// CardConfirmer collects card details and confirms the intent with the
// payment processor. It returns the confirmed payment intent id.
type CardConfirmer interface {
	ConfirmCard(ctx context.Context, intent domain.PaymentIntent, shipping domain.ShippingForm) (string, error)
}

// StripeCardFlow obtains a client secret from the backend, hands it to the
// confirmer, and reports the confirmation back to the backend.
type StripeCardFlow struct {
	payments  PaymentAPI
	confirmer CardConfirmer
	logger    *slog.Logger
}

var _ CardPaymentFlow = (*StripeCardFlow)(nil)

// NewStripeCardFlow creates the card flow.
func NewStripeCardFlow(payments PaymentAPI, confirmer CardConfirmer, logger *slog.Logger) *StripeCardFlow {
	return &StripeCardFlow{payments: payments, confirmer: confirmer, logger: logger}
}

// Start runs intent creation, processor confirmation and backend
// confirmation in order.
func (f *StripeCardFlow) Start(ctx context.Context, req CardPaymentRequest) (*CardPaymentResult, error) {
	log := logger.WithContext(ctx, f.logger)

	intent, err := f.payments.CreatePaymentIntent(ctx, req.OrderRef)
	if err != nil {
		return nil, fmt.Errorf("card payment: %w", err)
	}
	if intent.ClientSecret == "" {
		return nil, apperrors.PaymentFailed("Payment could not be initialised")
	}
	if !req.Amount.IsZero() && !intent.Amount.IsZero() && !req.Amount.Equal(intent.Amount) {
		// The backend recomputes totals; its amount is what gets charged.
		log.WarnContext(ctx, "payment intent amount differs from cart total",
			slog.String("cart_total", req.Amount.String()),
			slog.String("intent_amount", intent.Amount.String()),
		)
	}

	intentID, err := f.confirmer.ConfirmCard(ctx, *intent, req.Shipping)
	if err != nil {
		return nil, fmt.Errorf("card payment: %w", err)
	}

	confirmed, err := f.payments.ConfirmPayment(ctx, intentID, intent.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("card payment: %w", err)
	}
	if confirmed.Payment.Status != "" && !confirmed.Payment.Succeeded() {
		return nil, apperrors.PaymentFailed(fmt.Sprintf("Payment not completed. Status: %s", confirmed.Payment.Status))
	}

	log.InfoContext(ctx, "card payment confirmed",
		slog.String("payment_id", intent.PaymentID),
		slog.String("order_status", string(confirmed.OrderStatus)),
	)
	return &CardPaymentResult{
		PaymentID:   intent.PaymentID,
		OrderID:     intent.OrderID,
		OrderNumber: intent.OrderNumber,
		Amount:      intent.Amount,
	}, nil
}

// IntentIDFromClientSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromClientSecret(secret string) string {
	if i := strings.Index(secret, "_secret_"); i > 0 {
		return secret[:i]
	}
	return secret
}

// ExternalConfirmer is a CardConfirmer for intents confirmed outside this
// process, such as by a hosted payment page. It waits for confirm to be
// called with the client secret and reports the derived intent id.
type ExternalConfirmer struct {
	Confirm func(ctx context.Context, clientSecret string) error
}

// ConfirmCard implements CardConfirmer.
func (c ExternalConfirmer) ConfirmCard(ctx context.Context, intent domain.PaymentIntent, _ domain.ShippingForm) (string, error) {
	if c.Confirm != nil {
		if err := c.Confirm(ctx, intent.ClientSecret); err != nil {
			return "", err
		}
	}
	return IntentIDFromClientSecret(intent.ClientSecret), nil
}
