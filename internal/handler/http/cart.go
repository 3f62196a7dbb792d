package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/cart"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/store"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httputil"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/validator"
)

// CartActions is the cart action layer as the view server uses it.
type CartActions interface {
	FetchCart(ctx context.Context) error
	AddToCart(ctx context.Context, productID int64, quantity, stock int) error
	UpdateCartQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveFromCart(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
	ApplyPromoCode(ctx context.Context, code string) error
	RemovePromoCode(ctx context.Context) error
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	actions CartActions
	store   store.Reader
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(actions CartActions, st store.Reader, logger *slog.Logger) *CartHandler {
	return &CartHandler{actions: actions, store: st, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// Stock is the availability the product page showed; omit it when unknown.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gte=1"`
	Stock     *int  `json:"stock" validate:"omitempty,gte=0"`
}

// UpdateQuantityRequest is the JSON request body for changing a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PromoRequest is the JSON request body for applying a promo code.
type PromoRequest struct {
	Code string `json:"code"`
}

// cartView is the projection returned by every cart endpoint.
type cartView struct {
	store.Snapshot
	CanCheckout bool `json:"can_checkout"`
}

func (h *CartHandler) writeCart(w http.ResponseWriter) {
	snap := h.store.Snapshot()
	httputil.WriteData(w, http.StatusOK, cartView{Snapshot: snap, CanCheckout: snap.CanCheckout()})
}

// --- Handlers ---

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w)
}

// Refresh handles POST /api/cart/refresh
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.actions.FetchCart(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	stock := cart.UnknownStock
	if req.Stock != nil {
		stock = *req.Stock
	}

	if err := h.actions.AddToCart(r.Context(), req.ProductID, quantity, stock); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// UpdateItemQuantity handles PATCH /api/cart/items/{itemId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseID(w, chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.actions.UpdateCartQuantity(r.Context(), itemID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseID(w, chi.URLParam(r, "itemId"))
	if !ok {
		return
	}

	if err := h.actions.RemoveFromCart(r.Context(), itemID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.actions.ClearCart(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// ApplyPromo handles POST /api/cart/promo
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.actions.ApplyPromoCode(r.Context(), req.Code); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// RemovePromo handles DELETE /api/cart/promo
func (h *CartHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	if err := h.actions.RemovePromoCode(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}
