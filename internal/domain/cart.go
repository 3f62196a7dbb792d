package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the read-only product snapshot embedded in a cart line.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Image       string          `json:"image,omitempty"`
	Stock       int             `json:"stock"`
	Category    *CategoryRef    `json:"category,omitempty"`
	DateAdded   *time.Time      `json:"date_added,omitempty"`
}

// CategoryRef is a product category as the backend serializes it: a bare
// id, a slug, or an {id, title} object depending on the endpoint.
type CategoryRef struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// UnmarshalJSON accepts 3, "books" and {"id":3,"title":"Books"}.
func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '{':
		type plain CategoryRef
		return json.Unmarshal(data, (*plain)(c))
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			c.ID = id
			return nil
		}
		c.Title = s
		return nil
	default:
		return json.Unmarshal(data, &c.ID)
	}
}

// CartItem is one line of the server cart. Monetary fields are computed by
// the backend and are never recomputed locally.
type CartItem struct {
	ID              int64           `json:"id"`
	Product         Product         `json:"product"`
	Quantity        int             `json:"quantity"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	PriceDifference decimal.Decimal `json:"price_difference"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	IsAvailable     *bool           `json:"is_available,omitempty"`
}

// Available reports whether stock can satisfy the line. Backends that do
// not send is_available are trusted to have rejected unsatisfiable lines.
func (i CartItem) Available() bool {
	return i.IsAvailable == nil || *i.IsAvailable
}

// Cart is the full cart payload returned by GET /cart/.
type Cart struct {
	ID             int64           `json:"id,omitempty"`
	Items          []CartItem      `json:"items"`
	TotalItems     int             `json:"total_items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PromoCode      string          `json:"promo_code,omitempty"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
}

// EmptyCart is the shape shown when there is no cart or it could not be loaded.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AllAvailable reports whether every line can be fulfilled.
func (c Cart) AllAvailable() bool {
	for _, item := range c.Items {
		if !item.Available() {
			return false
		}
	}
	return true
}

// FindItem returns the line with the given id.
func (c Cart) FindItem(itemID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return CartItem{}, false
}

// OrderLines converts the cart into the {product_id, quantity} list the
// order endpoint expects.
func (c Cart) OrderLines() []OrderLine {
	lines := make([]OrderLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, OrderLine{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	return lines
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	for i := range out.Items {
		if avail := c.Items[i].IsAvailable; avail != nil {
			v := *avail
			out.Items[i].IsAvailable = &v
		}
		if cat := c.Items[i].Product.Category; cat != nil {
			v := *cat
			out.Items[i].Product.Category = &v
		}
	}
	if c.CreatedAt != nil {
		t := *c.CreatedAt
		out.CreatedAt = &t
	}
	return out
}
