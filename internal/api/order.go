package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
)

// PlaceOrderResult is a successful order placement. Duplicate is set when
// the backend recognised the submission as a repeat of an existing order.
type PlaceOrderResult struct {
	Message   string       `json:"message,omitempty"`
	Order     domain.Order `json:"order"`
	Duplicate bool         `json:"is_duplicate,omitempty"`
}

// OrderFilter narrows the order history.
type OrderFilter struct {
	Status   domain.OrderStatus
	DateFrom time.Time
	DateTo   time.Time
}

func (f OrderFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if !f.DateFrom.IsZero() {
		q.Set("date_from", f.DateFrom.Format(time.DateOnly))
	}
	if !f.DateTo.IsZero() {
		q.Set("date_to", f.DateTo.Format(time.DateOnly))
	}
	return q
}

// OrderAPI binds the /orders/ and /track/ endpoints.
type OrderAPI struct {
	r Requester
}

// NewOrderAPI creates the order bindings.
func NewOrderAPI(r Requester) *OrderAPI {
	return &OrderAPI{r: r}
}

// PlaceOrder submits an order. A 409 or 400 naming an existing order comes
// back as a *httpclient.ConflictError in the error chain.
func (a *OrderAPI) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*PlaceOrderResult, error) {
	var result PlaceOrderResult
	if err := a.r.Post(ctx, "/orders/", req, &result); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	if result.Order.ID == 0 {
		return nil, fmt.Errorf("place order: %w", apperrors.Internal(errors.New("response carried no order")))
	}
	return &result, nil
}

// GetOrder fetches one order.
func (a *OrderAPI) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := a.r.Get(ctx, fmt.Sprintf("/orders/%d/", id), nil, &order); err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &order, nil
}

// ListOrders returns the shopper's order history.
func (a *OrderAPI) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := a.r.Get(ctx, "/orders/history/", filter.query(), &raw); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := decodeOrderList(raw)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// PendingOrders returns the shopper's non-terminal orders. Backends without
// a dedicated endpoint are served from the history, filtered locally.
func (a *OrderAPI) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	var raw json.RawMessage
	err := a.r.Get(ctx, "/orders/pending/", nil, &raw)
	switch {
	case err == nil:
		orders, err := decodeOrderList(raw)
		if err != nil {
			return nil, fmt.Errorf("pending orders: %w", err)
		}
		return filterPending(orders), nil
	case errors.Is(err, apperrors.ErrNotFound):
		orders, err := a.ListOrders(ctx, OrderFilter{})
		if err != nil {
			return nil, fmt.Errorf("pending orders: %w", err)
		}
		return filterPending(orders), nil
	default:
		return nil, fmt.Errorf("pending orders: %w", err)
	}
}

// CancelOrder cancels an order the backend still allows cancelling.
func (a *OrderAPI) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var resp struct {
		Message string       `json:"message"`
		Order   domain.Order `json:"order"`
	}
	if err := a.r.Post(ctx, fmt.Sprintf("/orders/%d/cancel/", id), nil, &resp); err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", id, err)
	}
	return &resp.Order, nil
}

// TrackOrder looks up an order by its public number.
func (a *OrderAPI) TrackOrder(ctx context.Context, orderNumber string) (*domain.Tracking, error) {
	var tracking domain.Tracking
	if err := a.r.Get(ctx, "/track/"+url.PathEscape(orderNumber)+"/", nil, &tracking); err != nil {
		return nil, fmt.Errorf("track order %s: %w", orderNumber, err)
	}
	return &tracking, nil
}

// decodeOrderList accepts a bare list, a paginated {results} page, or an
// {orders} envelope.
func decodeOrderList(raw json.RawMessage) ([]domain.Order, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Order{}, nil
	}
	if raw[0] == '[' {
		var orders []domain.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, fmt.Errorf("decode order list: %w: %w", apperrors.ErrTransport, err)
		}
		return orders, nil
	}
	var page struct {
		Results []domain.Order `json:"results"`
		Orders  []domain.Order `json:"orders"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode order list: %w: %w", apperrors.ErrTransport, err)
	}
	if page.Results != nil {
		return page.Results, nil
	}
	if page.Orders != nil {
		return page.Orders, nil
	}
	return []domain.Order{}, nil
}

func filterPending(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.IsPending() {
			out = append(out, o)
		}
	}
	return out
}
