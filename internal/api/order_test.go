package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"
)

func placeRequest() domain.PlaceOrderRequest {
	cart := domain.Cart{Items: []domain.CartItem{{ID: 1, Quantity: 2, Product: domain.Product{ID: 7}}}}
	return domain.NewPlaceOrderRequest(cart, domain.ShippingForm{Address: "1 Main St"}, domain.PaymentMethodCashOnDelivery)
}

func TestOrderAPI_PlaceOrder_Success(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cash_on_delivery", body["payment_method"])
		assert.Equal(t, "1 Main St", body["shipping_address"])
		writeJSON(w, http.StatusCreated, `{"message":"Order placed successfully","order":{"id":42,"order_number":"ORD-42","status":"pending"}}`)
	}))

	res, err := api.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, int64(42), res.Order.ID)
	assert.Equal(t, domain.OrderStatusPending, res.Order.Status)
}

func TestOrderAPI_PlaceOrder_DuplicateFlag(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"order":{"id":42,"order_number":"ORD-42"},"is_duplicate":true}`)
	}))

	res, err := api.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, int64(42), res.Order.ID)
}

func TestOrderAPI_PlaceOrder_Conflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusBadRequest} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, `{"detail":"You have a recent pending order.","existing_order_id":9001,"existing_order_number":"ORD-9001"}`)
			}))

			_, err := api.PlaceOrder(context.Background(), placeRequest())
			var conflict *httpclient.ConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, int64(9001), conflict.ExistingOrderID)
			assert.Equal(t, "ORD-9001", conflict.ExistingOrderNumber)
		})
	}
}

func TestOrderAPI_PlaceOrder_MissingOrder(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"message":"ok"}`)
	}))

	_, err := api.PlaceOrder(context.Background(), placeRequest())
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestOrderAPI_ListOrders_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare list", `[{"id":1,"status":"pending"},{"id":2,"status":"delivered"}]`, 2},
		{"paginated", `{"count":1,"results":[{"id":1,"status":"pending"}]}`, 1},
		{"envelope", `{"orders":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"empty object", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			}))
			orders, err := api.ListOrders(context.Background(), OrderFilter{})
			require.NoError(t, err)
			assert.Len(t, orders, tt.want)
		})
	}
}

func TestOrderAPI_ListOrders_Filter(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/orders/history/", r.URL.Path)
		assert.Equal(t, "shipped", q.Get("status"))
		assert.Equal(t, "2024-01-01", q.Get("date_from"))
		assert.Equal(t, "2024-02-01", q.Get("date_to"))
		writeJSON(w, http.StatusOK, `[]`)
	}))

	_, err := api.ListOrders(context.Background(), OrderFilter{
		Status:   domain.OrderStatusShipped,
		DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestOrderAPI_PendingOrders(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/pending/", r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"id":9001,"order_number":"ORD-9001","status":"pending"},{"id":3,"status":"cancelled"}]`)
	}))

	orders, err := api.PendingOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-9001", orders[0].OrderNumber)
}

func TestOrderAPI_PendingOrders_FallsBackToHistory(t *testing.T) {
	var paths []string
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/orders/pending/" {
			writeJSON(w, http.StatusNotFound, `{"detail":"Not found."}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"results":[{"id":1,"status":"delivered"},{"id":2,"status":"shipped"}]}`)
	}))

	orders, err := api.PendingOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(2), orders[0].ID)
	assert.Equal(t, []string{"/api/orders/pending/", "/api/orders/history/"}, paths)
}

func TestOrderAPI_PendingOrders_PropagatesOtherErrors(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Authentication credentials were not provided."}`)
	}))

	_, err := api.PendingOrders(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestOrderAPI_GetCancelTrack(t *testing.T) {
	api := NewOrderAPI(newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders/5/":
			writeJSON(w, http.StatusOK, `{"id":5,"status":"confirmed","can_be_cancelled":true}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders/5/cancel/":
			writeJSON(w, http.StatusOK, `{"message":"Order cancelled","order":{"id":5,"status":"cancelled"}}`)
		case r.URL.Path == "/api/track/ORD-5/":
			writeJSON(w, http.StatusOK, `{"order":{"id":5,"order_number":"ORD-5","status":"shipped"},
				"timeline":[{"status":"pending","title":"Order Placed","completed":true},{"status":"delivered","title":"Delivered","completed":false}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	order, err := api.GetOrder(ctx, 5)
	require.NoError(t, err)
	assert.True(t, order.CanCancel())

	cancelled, err := api.CancelOrder(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	tracking, err := api.TrackOrder(ctx, "ORD-5")
	require.NoError(t, err)
	assert.Equal(t, "ORD-5", tracking.Order.OrderNumber)
	require.Len(t, tracking.Timeline, 2)
	assert.True(t, tracking.Timeline[0].Completed)

	_, err = api.GetOrder(ctx, 6)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
