package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/api"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httputil"
)

// OrderService is the order binding as the view server uses it.
type OrderService interface {
	ListOrders(ctx context.Context, filter api.OrderFilter) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	CancelOrder(ctx context.Context, id int64) (*domain.Order, error)
	TrackOrder(ctx context.Context, orderNumber string) (*domain.Tracking, error)
}

// OrderHandler handles HTTP requests for order history and tracking.
type OrderHandler struct {
	orders OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// orderView adds the derived flags the order pages render.
type orderView struct {
	*domain.Order
	Cancelable bool `json:"cancelable"`
	Terminal   bool `json:"terminal"`
}

func newOrderView(o *domain.Order) orderView {
	return orderView{Order: o, Cancelable: o.CanCancel(), Terminal: o.Status.IsTerminal()}
}

// ListOrders handles GET /api/orders?status=&date_from=&date_to=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := api.OrderFilter{Status: domain.OrderStatus(q.Get("status"))}
	if filter.Status != "" && !filter.Status.IsValid() {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "invalid status: " + q.Get("status")},
		})
		return
	}
	for param, dst := range map[string]*time.Time{"date_from": &filter.DateFrom, "date_to": &filter.DateTo} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "invalid " + param + ": " + raw},
			})
			return
		}
		*dst = t
	}

	orders, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i]))
	}
	httputil.WriteData(w, http.StatusOK, views)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newOrderView(order))
}

// CancelOrder handles POST /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newOrderView(order))
}

// TrackOrder handles GET /api/track/{orderNumber}
func (h *OrderHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	tracking, err := h.orders.TrackOrder(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, tracking)
}
