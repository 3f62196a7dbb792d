package domain

import "strings"

// DefaultShippingCountry is used when the shopper leaves the country empty.
const DefaultShippingCountry = "USA"

// ShippingForm holds the address and contact fields collected at checkout.
// Only the street address is mandatory.
type ShippingForm struct {
	Address       string `json:"shipping_address" validate:"notblank,max=500"`
	City          string `json:"shipping_city,omitempty" validate:"omitempty,max=100"`
	State         string `json:"shipping_state,omitempty" validate:"omitempty,max=100"`
	Zip           string `json:"shipping_zip,omitempty" validate:"omitempty,max=20"`
	Country       string `json:"shipping_country,omitempty" validate:"omitempty,max=100"`
	Phone         string `json:"shipping_phone,omitempty" validate:"omitempty,max=20"`
	CustomerNotes string `json:"customer_notes,omitempty" validate:"omitempty,max=1000"`
}

// Trimmed returns the form with surrounding whitespace removed from every field.
func (f ShippingForm) Trimmed() ShippingForm {
	return ShippingForm{
		Address:       strings.TrimSpace(f.Address),
		City:          strings.TrimSpace(f.City),
		State:         strings.TrimSpace(f.State),
		Zip:           strings.TrimSpace(f.Zip),
		Country:       strings.TrimSpace(f.Country),
		Phone:         strings.TrimSpace(f.Phone),
		CustomerNotes: strings.TrimSpace(f.CustomerNotes),
	}
}

// PlaceOrderRequest is the body of POST /orders/.
type PlaceOrderRequest struct {
	Cart          []OrderLine   `json:"cart"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PromoCode     string        `json:"promo_code,omitempty"`
	ShippingForm
}

// NewPlaceOrderRequest builds an order placement from the cart and form.
func NewPlaceOrderRequest(cart Cart, form ShippingForm, method PaymentMethod) PlaceOrderRequest {
	if form.Country == "" {
		form.Country = DefaultShippingCountry
	}
	return PlaceOrderRequest{
		Cart:          cart.OrderLines(),
		PaymentMethod: method,
		PromoCode:     cart.PromoCode,
		ShippingForm:  form,
	}
}
