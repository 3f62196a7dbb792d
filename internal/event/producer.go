// Package event publishes storefront analytics events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	pkgkafka "github.com/muhammadmasoud/amazon-clone-sub000/pkg/kafka"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

// Event types.
const (
	TypeCartSynced       = "cart.synced"
	TypeOrderPlaced      = "order.placed"
	TypeOrderRedirected  = "order.redirected"
	TypePaymentSucceeded = "payment.succeeded"
)

// Aggregate types.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeOrder   = "order"
	AggregateTypePayment = "payment"
)

// SourceStorefront identifies events emitted by this client.
const SourceStorefront = "storefront"

// Redirect reasons carried by order.redirected.
const (
	ReasonPendingOrder   = "pending_order"
	ReasonDuplicateOrder = "duplicate_order"
)

// CartSyncedData is the payload for cart.synced.
type CartSyncedData struct {
	UserID      string          `json:"user_id,omitempty"`
	Action      string          `json:"action"`
	ItemCount   int             `json:"item_count"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PromoCode   string          `json:"promo_code,omitempty"`
}

// OrderPlacedData is the payload for order.placed.
type OrderPlacedData struct {
	UserID        string               `json:"user_id,omitempty"`
	OrderID       int64                `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
}

// OrderRedirectedData is the payload for order.redirected.
type OrderRedirectedData struct {
	UserID      string `json:"user_id,omitempty"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number,omitempty"`
	Reason      string `json:"reason"`
}

// PaymentSucceededData is the payload for payment.succeeded.
type PaymentSucceededData struct {
	UserID    string          `json:"user_id,omitempty"`
	PaymentID string          `json:"payment_id"`
	OrderRef  string          `json:"order_ref,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events. A nil publisher turns every call
// into a no-op so the client runs without a broker.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

// PublishCartSynced records that the cart was re-fetched after action.
func (p *Producer) PublishCartSynced(ctx context.Context, action string, cart domain.Cart) error {
	userID := logger.UserIDFromContext(ctx)
	data := CartSyncedData{
		UserID:      userID,
		Action:      action,
		ItemCount:   len(cart.Items),
		TotalItems:  cart.TotalItems,
		TotalAmount: cart.TotalAmount,
		PromoCode:   cart.PromoCode,
	}
	aggregateID := userID
	if aggregateID == "" {
		aggregateID = strconv.FormatInt(cart.ID, 10)
	}
	return p.publish(ctx, TypeCartSynced, aggregateID, AggregateTypeCart, data)
}

// PublishOrderPlaced records a newly created order.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order, method domain.PaymentMethod) error {
	data := OrderPlacedData{
		UserID:        logger.UserIDFromContext(ctx),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentMethod: method,
		TotalAmount:   order.TotalAmount,
	}
	return p.publish(ctx, TypeOrderPlaced, strconv.FormatInt(order.ID, 10), AggregateTypeOrder, data)
}

// PublishOrderRedirected records that placement was steered to an
// existing order.
func (p *Producer) PublishOrderRedirected(ctx context.Context, orderID int64, orderNumber, reason string) error {
	data := OrderRedirectedData{
		UserID:      logger.UserIDFromContext(ctx),
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Reason:      reason,
	}
	return p.publish(ctx, TypeOrderRedirected, strconv.FormatInt(orderID, 10), AggregateTypeOrder, data)
}

// PublishPaymentSucceeded records a confirmed card payment.
func (p *Producer) PublishPaymentSucceeded(ctx context.Context, paymentID, orderRef string, amount decimal.Decimal) error {
	data := PaymentSucceededData{
		UserID:    logger.UserIDFromContext(ctx),
		PaymentID: paymentID,
		OrderRef:  orderRef,
		Amount:    amount,
	}
	return p.publish(ctx, TypePaymentSucceeded, paymentID, AggregateTypePayment, data)
}

func (p *Producer) publish(ctx context.Context, eventType, aggregateID, aggregateType string, data any) error {
	if !p.Enabled() {
		return nil
	}

	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, pkgkafka.Topic(aggregateType), evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event",
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
