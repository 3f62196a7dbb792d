package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
)

// CartAPI binds the /cart/ endpoints.
type CartAPI struct {
	r Requester
}

// NewCartAPI creates the cart bindings.
func NewCartAPI(r Requester) *CartAPI {
	return &CartAPI{r: r}
}

// GetCart fetches the full cart. summary asks the backend for the lighter
// summary projection.
func (a *CartAPI) GetCart(ctx context.Context, summary bool) (*domain.Cart, error) {
	var query url.Values
	if summary {
		query = url.Values{"summary": {"true"}}
	}
	cart := domain.EmptyCart()
	if err := a.r.Get(ctx, "/cart/", query, &cart); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// GetCartCount returns the number of lines in the cart.
func (a *CartAPI) GetCartCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := a.r.Get(ctx, "/cart/count/", nil, &resp); err != nil {
		return 0, fmt.Errorf("get cart count: %w", err)
	}
	return resp.Count, nil
}

// AddToCart adds quantity units of a product.
func (a *CartAPI) AddToCart(ctx context.Context, productID int64, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	if err := a.r.Post(ctx, "/cart/add/", body, nil); err != nil {
		return fmt.Errorf("add product %d to cart: %w", productID, err)
	}
	return nil
}

// UpdateCartQuantity sets the quantity of one cart line.
func (a *CartAPI) UpdateCartQuantity(ctx context.Context, itemID int64, quantity int) error {
	body := map[string]int{"quantity": quantity}
	if err := a.r.Patch(ctx, fmt.Sprintf("/cart/update/%d/", itemID), body, nil); err != nil {
		return fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	return nil
}

// RemoveFromCart deletes one cart line.
func (a *CartAPI) RemoveFromCart(ctx context.Context, itemID int64) error {
	if err := a.r.Delete(ctx, fmt.Sprintf("/cart/remove/%d/", itemID), nil); err != nil {
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	return nil
}

// ClearCart empties the cart.
func (a *CartAPI) ClearCart(ctx context.Context) error {
	if err := a.r.Delete(ctx, "/cart/clear/", nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ApplyPromoCode applies a discount code to the cart.
func (a *CartAPI) ApplyPromoCode(ctx context.Context, code string) error {
	if err := a.r.Post(ctx, "/cart/promo/apply/", map[string]string{"promo_code": code}, nil); err != nil {
		return fmt.Errorf("apply promo code: %w", err)
	}
	return nil
}

// RemovePromoCode removes the active discount code.
func (a *CartAPI) RemovePromoCode(ctx context.Context) error {
	if err := a.r.Delete(ctx, "/cart/promo/remove/", nil); err != nil {
		return fmt.Errorf("remove promo code: %w", err)
	}
	return nil
}
