// Package cart sequences every cart mutation: loading flag, backend call,
// full re-fetch into the store, and the unconditional loading reset.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/event"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/metrics"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/store"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

// Action names used in logs, metrics and events.
const (
	ActionFetch       = "fetch"
	ActionAdd         = "add"
	ActionUpdate      = "update_quantity"
	ActionRemove      = "remove"
	ActionClear       = "clear"
	ActionApplyPromo  = "apply_promo"
	ActionRemovePromo = "remove_promo"
)

// Messages shown when the backend gives no usable reason.
const (
	MsgFetchFailed       = "Failed to fetch cart"
	MsgAddFailed         = "Failed to add item to cart"
	MsgRemoveFailed      = "Failed to remove item from cart"
	MsgUpdateFailed      = "Failed to update cart quantity"
	MsgClearFailed       = "Failed to clear cart"
	MsgApplyPromoFailed  = "Failed to apply promo code"
	MsgRemovePromoFailed = "Failed to remove promo code"
)

// UnknownStock marks a product whose stock the caller does not know.
const UnknownStock = -1

// CartAPI is the backend surface the actions need.
type CartAPI interface {
	GetCart(ctx context.Context, summary bool) (*domain.Cart, error)
	GetCartCount(ctx context.Context) (int, error)
	AddToCart(ctx context.Context, productID int64, quantity int) error
	UpdateCartQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveFromCart(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
	ApplyPromoCode(ctx context.Context, code string) error
	RemovePromoCode(ctx context.Context) error
}

// Actions is the only writer of the cart store besides checkout.
type Actions struct {
	api    CartAPI
	store  store.Writer
	events *event.Producer
	logger *slog.Logger
}

// NewActions creates the cart action layer.
func NewActions(api CartAPI, st store.Writer, events *event.Producer, logger *slog.Logger) *Actions {
	return &Actions{api: api, store: st, events: events, logger: logger}
}

// FetchCart loads the cart. On failure the store shows the empty cart with
// an error rather than stale totals.
func (a *Actions) FetchCart(ctx context.Context) error {
	start := time.Now()
	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	cart, err := a.api.GetCart(ctx, false)
	if err != nil {
		a.store.FailFetch(apperrors.UserMessage(err, MsgFetchFailed))
		a.logFailure(ctx, ActionFetch, err)
		metrics.ObserveCartAction(ActionFetch, metrics.OutcomeFailure, start)
		return fmt.Errorf("fetch cart: %w", err)
	}

	a.store.SetCart(*cart)
	metrics.ObserveCartAction(ActionFetch, metrics.OutcomeSuccess, start)
	return nil
}

// FetchCartCount refreshes the badge count, falling back to zero.
func (a *Actions) FetchCartCount(ctx context.Context) int {
	n, err := a.api.GetCartCount(ctx)
	if err != nil {
		logger.WithContext(ctx, a.logger).WarnContext(ctx, "cart count unavailable",
			slog.String("error", err.Error()),
		)
		n = 0
	}
	a.store.SetCount(n)
	return n
}

// AddToCart adds quantity units of a product. stock is the product's known
// stock, or UnknownStock.
func (a *Actions) AddToCart(ctx context.Context, productID int64, quantity, stock int) error {
	if err := checkQuantity(quantity); err != nil {
		return a.reject(ctx, ActionAdd, err)
	}
	if stock != UnknownStock {
		inCart := 0
		for _, item := range a.store.Items() {
			if item.Product.ID == productID {
				inCart += item.Quantity
			}
		}
		if err := checkStock(inCart+quantity, stock); err != nil {
			return a.reject(ctx, ActionAdd, err)
		}
	}

	return a.dispatch(ctx, ActionAdd, MsgAddFailed, func(ctx context.Context) error {
		return a.api.AddToCart(ctx, productID, quantity)
	}, slog.Int64("product_id", productID), slog.Int("quantity", quantity))
}

// UpdateCartQuantity sets a line's quantity, bounded by the stock of the
// product as last fetched.
func (a *Actions) UpdateCartQuantity(ctx context.Context, itemID int64, quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return a.reject(ctx, ActionUpdate, err)
	}
	snap := a.store.Snapshot()
	if item, ok := snap.Cart.FindItem(itemID); ok {
		if err := checkStock(quantity, item.Product.Stock); err != nil {
			return a.reject(ctx, ActionUpdate, err)
		}
	}

	return a.dispatch(ctx, ActionUpdate, MsgUpdateFailed, func(ctx context.Context) error {
		return a.api.UpdateCartQuantity(ctx, itemID, quantity)
	}, slog.Int64("item_id", itemID), slog.Int("quantity", quantity))
}

// RemoveFromCart deletes one line.
func (a *Actions) RemoveFromCart(ctx context.Context, itemID int64) error {
	return a.dispatch(ctx, ActionRemove, MsgRemoveFailed, func(ctx context.Context) error {
		return a.api.RemoveFromCart(ctx, itemID)
	}, slog.Int64("item_id", itemID))
}

// ClearCart empties the cart. The server has nothing left to recompute, so
// the store is reset directly instead of re-fetched.
func (a *Actions) ClearCart(ctx context.Context) error {
	start := time.Now()
	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	if err := a.api.ClearCart(ctx); err != nil {
		return a.fail(ctx, ActionClear, MsgClearFailed, start, err)
	}

	a.store.ClearCart()
	a.publishSynced(ctx, ActionClear, domain.EmptyCart())
	metrics.ObserveCartAction(ActionClear, metrics.OutcomeSuccess, start)
	logger.WithContext(ctx, a.logger).InfoContext(ctx, "cart cleared")
	return nil
}

// ApplyPromoCode applies a discount code.
func (a *Actions) ApplyPromoCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return a.reject(ctx, ActionApplyPromo, apperrors.InvalidInput("Please enter a promo code"))
	}
	return a.dispatch(ctx, ActionApplyPromo, MsgApplyPromoFailed, func(ctx context.Context) error {
		return a.api.ApplyPromoCode(ctx, code)
	}, slog.String("promo_code", code))
}

// RemovePromoCode removes the active discount code.
func (a *Actions) RemovePromoCode(ctx context.Context) error {
	return a.dispatch(ctx, ActionRemovePromo, MsgRemovePromoFailed, func(ctx context.Context) error {
		return a.api.RemovePromoCode(ctx)
	})
}

// dispatch runs call between one loading on/off pair and re-synchronizes
// the store from the server on success. The store is never patched locally.
func (a *Actions) dispatch(ctx context.Context, action, fallback string, call func(context.Context) error, attrs ...any) error {
	start := time.Now()
	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	if err := call(ctx); err != nil {
		return a.fail(ctx, action, fallback, start, err, attrs...)
	}

	a.resync(ctx, action)
	metrics.ObserveCartAction(action, metrics.OutcomeSuccess, start)
	logger.WithContext(ctx, a.logger).InfoContext(ctx, "cart action completed",
		append([]any{slog.String("action", action)}, attrs...)...,
	)
	return nil
}

// resync re-fetches cart and count without touching the loading flag, so
// the enclosing action keeps a single loading transition.
func (a *Actions) resync(ctx context.Context, action string) {
	cart, err := a.api.GetCart(ctx, false)
	if err != nil {
		a.store.FailFetch(apperrors.UserMessage(err, MsgFetchFailed))
		a.logFailure(ctx, ActionFetch, err)
	} else {
		a.store.SetCart(*cart)
		a.publishSynced(ctx, action, *cart)
	}
	a.FetchCartCount(ctx)
}

func (a *Actions) fail(ctx context.Context, action, fallback string, start time.Time, err error, attrs ...any) error {
	a.store.SetError(apperrors.UserMessage(err, fallback))
	a.logFailure(ctx, action, err, attrs...)
	metrics.ObserveCartAction(action, metrics.OutcomeFailure, start)
	return fmt.Errorf("cart %s: %w", action, err)
}

func (a *Actions) reject(ctx context.Context, action string, err *apperrors.AppError) error {
	a.store.SetError(err.Message)
	metrics.RejectCartAction(action)
	logger.WithContext(ctx, a.logger).InfoContext(ctx, "cart action rejected locally",
		slog.String("action", action),
		slog.String("reason", err.Message),
	)
	return err
}

func (a *Actions) logFailure(ctx context.Context, action string, err error, attrs ...any) {
	logger.WithContext(ctx, a.logger).ErrorContext(ctx, "cart action failed",
		append([]any{slog.String("action", action), slog.String("error", err.Error())}, attrs...)...,
	)
}

func (a *Actions) publishSynced(ctx context.Context, action string, cart domain.Cart) {
	if err := a.events.PublishCartSynced(ctx, action, cart); err != nil {
		logger.WithContext(ctx, a.logger).WarnContext(ctx, "failed to publish cart.synced event",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

func checkQuantity(quantity int) *apperrors.AppError {
	if quantity < 1 {
		return apperrors.InvalidInput("Quantity must be at least 1")
	}
	return nil
}

func checkStock(quantity, stock int) *apperrors.AppError {
	if quantity > stock {
		return apperrors.InvalidInput(fmt.Sprintf("Only %d items available in stock", stock))
	}
	return nil
}
