// Package checkout turns a "place order" intent into exactly one of the
// card or cash-on-delivery flows without ever creating a second order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/event"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/metrics"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/store"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/validator"
)

// Messages shown when the backend gives no usable reason.
const (
	MsgPlaceOrderFailed = "Failed to place order. Please try again."
	MsgPaymentFailed    = "Payment failed. Please try again."
	MsgEmptyCart        = "Your cart is empty"
	MsgUnavailableItems = "Some items in your cart are no longer available"
)

// ErrSubmissionSuppressed marks a submission refused by the guard.
var ErrSubmissionSuppressed = errors.New("order submission suppressed")

// OutcomeKind names the branch a submission ended in.
type OutcomeKind string

const (
	OutcomePlaced             OutcomeKind = "placed"
	OutcomeRedirectedPending  OutcomeKind = "redirected_pending"
	OutcomeRedirectedExisting OutcomeKind = "redirected_existing"
	OutcomePaymentSucceeded   OutcomeKind = "payment_succeeded"
	OutcomeSuppressed         OutcomeKind = "suppressed"
	OutcomeRejected           OutcomeKind = "rejected"
	OutcomeFailed             OutcomeKind = "failed"
)

// Outcome describes what one Submit did. It is returned alongside any error.
type Outcome struct {
	Kind          OutcomeKind    `json:"kind"`
	Phase         Phase          `json:"phase"`
	NavigateTo    string         `json:"navigate_to,omitempty"`
	OrderID       int64          `json:"order_id,omitempty"`
	OrderNumber   string         `json:"order_number,omitempty"`
	PaymentID     string         `json:"payment_id,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
}

// Config tunes the orchestrator.
type Config struct {
	Cooldown time.Duration
}

// Orchestrator runs checkout submissions against the cart store.
type Orchestrator struct {
	orders   OrderAPI
	store    store.Writer
	card     CardPaymentFlow
	nav      Navigator
	notifier Notifier
	events   *event.Producer
	logger   *slog.Logger
	cooldown time.Duration
	now      func() time.Time

	mu      sync.Mutex
	current *Session
}

// NewOrchestrator wires the orchestrator. card, nav and notifier may be nil.
func NewOrchestrator(
	cfg Config,
	orders OrderAPI,
	st store.Writer,
	card CardPaymentFlow,
	nav Navigator,
	notifier Notifier,
	events *event.Producer,
	logger *slog.Logger,
) *Orchestrator {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Orchestrator{
		orders:   orders,
		store:    st,
		card:     card,
		nav:      nav,
		notifier: notifier,
		events:   events,
		logger:   logger,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// NewSession starts a checkout session with the configured cooldown.
func (o *Orchestrator) NewSession() *Session {
	return NewSession(o.cooldown)
}

// ActiveSession returns the current session, starting a new one when there
// is none or the previous one has finished.
func (o *Orchestrator) ActiveSession() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil || o.current.Phase().IsTerminal() {
		o.current = o.NewSession()
	}
	return o.current
}

// submission carries one Submit call's state.
type submission struct {
	o       *Orchestrator
	sess    *Session
	method  domain.PaymentMethod
	outcome *Outcome
	log     *slog.Logger
}

func (s *submission) notify(ctx context.Context, level Level, msg string) {
	n := Notification{Level: level, Message: msg}
	s.outcome.Notifications = append(s.outcome.Notifications, n)
	if s.o.notifier != nil {
		s.o.notifier.Notify(ctx, n)
	}
}

func (s *submission) navigate(ctx context.Context, path string) {
	s.outcome.NavigateTo = path
	if s.o.nav != nil {
		s.o.nav.Navigate(ctx, path)
	}
}

func (s *submission) finish(kind OutcomeKind, metricOutcome string) *Outcome {
	s.outcome.Kind = kind
	s.outcome.Phase = s.sess.Phase()
	metrics.ObserveCheckout(string(s.method), metricOutcome)
	return s.outcome
}

// Submit places the order for sess using its selected payment method. The
// returned Outcome is never nil.
func (o *Orchestrator) Submit(ctx context.Context, sess *Session) (*Outcome, error) {
	form, method, err := sess.begin()
	sub := &submission{
		o:       o,
		sess:    sess,
		method:  method,
		outcome: &Outcome{},
		log:     logger.WithContext(ctx, o.logger).With(slog.String("payment_method", string(method))),
	}
	if err != nil {
		sub.notify(ctx, LevelError, apperrors.UserMessage(err, MsgPlaceOrderFailed))
		return sub.finish(OutcomeRejected, metrics.CheckoutValidationFailed), err
	}

	snap, err := o.precheck(ctx, sub, form)
	if err != nil {
		return sub.finish(OutcomeRejected, metrics.CheckoutValidationFailed), err
	}

	if !sess.guard.TryAcquire(o.now()) {
		sub.log.WarnContext(ctx, "order submission suppressed",
			slog.Bool("in_flight", sess.guard.InFlight()),
			slog.Time("last_attempt", sess.guard.LastAttempt()),
		)
		return sub.finish(OutcomeSuppressed, metrics.CheckoutGuardRejected), &apperrors.AppError{
			Code:    "SUBMISSION_SUPPRESSED",
			Message: "Your order is already being placed",
			Status:  http.StatusTooManyRequests,
			Err:     ErrSubmissionSuppressed,
		}
	}
	defer sess.guard.Release()
	sess.transition(PhaseSubmitting, "")

	if method == domain.PaymentMethodCard {
		return o.submitCard(ctx, sub, form, snap)
	}
	return o.submitCashOnDelivery(ctx, sub, form, snap)
}

// precheck runs the local guards shared by both payment methods.
func (o *Orchestrator) precheck(ctx context.Context, sub *submission, form domain.ShippingForm) (store.Snapshot, error) {
	if err := validator.Validate(form); err != nil {
		var valErr *validator.ValidationError
		msg := "Please complete your shipping information"
		if errors.As(err, &valErr) {
			msg = valErr.First()
		}
		sub.notify(ctx, LevelError, msg)
		sub.sess.transition(PhaseMethodSelected, msg)
		sub.log.InfoContext(ctx, "checkout rejected: invalid shipping form", slog.String("reason", msg))
		return store.Snapshot{}, err
	}

	snap := o.store.Snapshot()
	if snap.Cart.IsEmpty() {
		sub.notify(ctx, LevelWarning, MsgEmptyCart)
		sub.navigate(ctx, PathCart)
		sub.sess.transition(PhaseMethodSelected, MsgEmptyCart)
		sub.log.InfoContext(ctx, "checkout rejected: empty cart")
		return store.Snapshot{}, apperrors.InvalidInput(MsgEmptyCart)
	}
	if !snap.Cart.AllAvailable() {
		sub.notify(ctx, LevelError, MsgUnavailableItems)
		sub.sess.transition(PhaseMethodSelected, MsgUnavailableItems)
		sub.log.InfoContext(ctx, "checkout rejected: unavailable items")
		return store.Snapshot{}, apperrors.InvalidInput(MsgUnavailableItems)
	}
	return snap, nil
}

func (o *Orchestrator) submitCashOnDelivery(ctx context.Context, sub *submission, form domain.ShippingForm, snap store.Snapshot) (*Outcome, error) {
	pending, err := o.orders.PendingOrders(ctx)
	switch {
	case err != nil:
		// The backend's own duplicate detection still guards placement.
		sub.log.WarnContext(ctx, "pending order check failed, placing order anyway",
			slog.String("error", err.Error()),
		)
	case len(pending) > 0:
		existing := pending[0]
		sub.notify(ctx, LevelWarning, fmt.Sprintf(
			"You already have a pending order (%s). Please complete or cancel it before placing a new one.",
			existing.OrderNumber))
		sub.navigate(ctx, OrderPath(existing.ID))
		sub.sess.transition(PhaseAbandoned, "")
		sub.outcome.OrderID, sub.outcome.OrderNumber = existing.ID, existing.OrderNumber
		o.publishRedirect(ctx, existing.ID, existing.OrderNumber, event.ReasonPendingOrder)
		sub.log.InfoContext(ctx, "checkout redirected to pending order",
			slog.Int64("order_id", existing.ID),
			slog.String("order_number", existing.OrderNumber),
		)
		return sub.finish(OutcomeRedirectedPending, metrics.CheckoutRedirectedPending), nil
	}

	req := domain.NewPlaceOrderRequest(snap.Cart, form, domain.PaymentMethodCashOnDelivery)
	result, err := o.orders.PlaceOrder(ctx, req)
	if err != nil {
		var conflict *httpclient.ConflictError
		if errors.As(err, &conflict) {
			return o.redirectExisting(ctx, sub, conflict.ExistingOrderID, conflict.ExistingOrderNumber), nil
		}
		msg := apperrors.UserMessage(err, MsgPlaceOrderFailed)
		sub.notify(ctx, LevelError, msg)
		sub.sess.transition(PhaseMethodSelected, msg)
		sub.log.ErrorContext(ctx, "order placement failed", slog.String("error", err.Error()))
		return sub.finish(OutcomeFailed, metrics.CheckoutFailed), err
	}

	if result.Duplicate {
		return o.redirectExisting(ctx, sub, result.Order.ID, result.Order.OrderNumber), nil
	}

	o.store.ClearCart()
	sub.notify(ctx, LevelSuccess, fmt.Sprintf("Order placed successfully! Order number: %s", result.Order.OrderNumber))
	sub.navigate(ctx, OrderPath(result.Order.ID))
	sub.sess.transition(PhaseOrderPlaced, "")
	sub.outcome.OrderID, sub.outcome.OrderNumber = result.Order.ID, result.Order.OrderNumber

	if err := o.events.PublishOrderPlaced(ctx, &result.Order, domain.PaymentMethodCashOnDelivery); err != nil {
		sub.log.WarnContext(ctx, "failed to publish order.placed event", slog.String("error", err.Error()))
	}
	sub.log.InfoContext(ctx, "order placed",
		slog.Int64("order_id", result.Order.ID),
		slog.String("order_number", result.Order.OrderNumber),
	)
	return sub.finish(OutcomePlaced, metrics.CheckoutPlaced), nil
}

// redirectExisting handles every "an order already exists" signal the same
// way: the order is valid, so the local cart is cleared and the shopper is
// sent to it.
func (o *Orchestrator) redirectExisting(ctx context.Context, sub *submission, orderID int64, orderNumber string) *Outcome {
	o.store.ClearCart()

	path := PathOrders
	if orderID > 0 {
		path = OrderPath(orderID)
	}
	msg := "This order was already placed"
	if orderNumber != "" {
		msg = fmt.Sprintf("This order was already placed (%s)", orderNumber)
	}
	sub.notify(ctx, LevelInfo, msg)
	sub.navigate(ctx, path)
	sub.sess.transition(PhaseOrderPlaced, "")
	sub.outcome.OrderID, sub.outcome.OrderNumber = orderID, orderNumber

	o.publishRedirect(ctx, orderID, orderNumber, event.ReasonDuplicateOrder)
	sub.log.InfoContext(ctx, "checkout redirected to existing order",
		slog.Int64("order_id", orderID),
		slog.String("order_number", orderNumber),
	)
	return sub.finish(OutcomeRedirectedExisting, metrics.CheckoutRedirectedExisting)
}

func (o *Orchestrator) submitCard(ctx context.Context, sub *submission, form domain.ShippingForm, snap store.Snapshot) (*Outcome, error) {
	if o.card == nil {
		err := apperrors.ServiceUnavailable("Card payments are not available")
		return o.cardFailed(ctx, sub, err), err
	}

	result, err := o.card.Start(ctx, CardPaymentRequest{
		Amount:   snap.Cart.TotalAmount,
		OrderRef: domain.CartCheckoutRef,
		Shipping: form,
	})
	if err != nil {
		return o.cardFailed(ctx, sub, err), err
	}
	return o.cardSucceeded(ctx, sub, result), nil
}

// cardSucceeded is the card widget's success callback.
func (o *Orchestrator) cardSucceeded(ctx context.Context, sub *submission, result *CardPaymentResult) *Outcome {
	o.store.ClearCart()
	sub.notify(ctx, LevelSuccess, "Payment successful!")
	sub.navigate(ctx, PaymentSuccessPath(result.PaymentID))
	sub.sess.transition(PhaseOrderPlaced, "")
	sub.outcome.PaymentID = result.PaymentID
	sub.outcome.OrderID, sub.outcome.OrderNumber = result.OrderID, result.OrderNumber

	orderRef := result.OrderNumber
	if orderRef == "" && result.OrderID > 0 {
		orderRef = fmt.Sprint(result.OrderID)
	}
	if err := o.events.PublishPaymentSucceeded(ctx, result.PaymentID, orderRef, result.Amount); err != nil {
		sub.log.WarnContext(ctx, "failed to publish payment.succeeded event", slog.String("error", err.Error()))
	}
	sub.log.InfoContext(ctx, "card payment succeeded", slog.String("payment_id", result.PaymentID))
	return sub.finish(OutcomePaymentSucceeded, metrics.CheckoutPlaced)
}

// cardFailed is the card widget's error callback.
func (o *Orchestrator) cardFailed(ctx context.Context, sub *submission, err error) *Outcome {
	msg := apperrors.UserMessage(err, MsgPaymentFailed)
	sub.notify(ctx, LevelError, msg)
	sub.sess.transition(PhaseMethodSelected, msg)
	sub.log.ErrorContext(ctx, "card payment failed", slog.String("error", err.Error()))
	return sub.finish(OutcomeFailed, metrics.CheckoutFailed)
}

func (o *Orchestrator) publishRedirect(ctx context.Context, orderID int64, orderNumber, reason string) {
	if err := o.events.PublishOrderRedirected(ctx, orderID, orderNumber, reason); err != nil {
		logger.WithContext(ctx, o.logger).WarnContext(ctx, "failed to publish order.redirected event",
			slog.String("error", err.Error()),
		)
	}
}
