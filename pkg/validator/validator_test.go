package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressForm struct {
	Address string `json:"shipping_address" validate:"required"`
	Phone   string `json:"shipping_phone" validate:"omitempty,max=20"`
	Method  string `json:"payment_method" validate:"required,oneof=card cash_on_delivery"`
	Qty     int    `json:"quantity" validate:"gte=1,lte=99"`
}

func validForm() addressForm {
	return addressForm{Address: "123 Main St", Method: "card", Qty: 1}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	f := validForm()
	f.Address = ""
	err := Validate(f)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["shipping_address"])
	assert.Equal(t, "shipping address is required", valErr.First())
}

func TestValidate_NotBlank(t *testing.T) {
	type form struct {
		Address string `json:"shipping_address" validate:"notblank"`
	}

	assert.NoError(t, Validate(form{Address: "1 Main St"}))
	for _, blank := range []string{"", "   ", " \t\n "} {
		err := Validate(form{Address: blank})
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr, "address %q", blank)
		assert.Equal(t, "shipping address is required", valErr.First())
	}
}

func TestValidate_OneOf(t *testing.T) {
	f := validForm()
	f.Method = "bitcoin"
	err := Validate(f)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["payment_method"], "one of")
}

func TestValidate_NumericRange(t *testing.T) {
	f := validForm()
	f.Qty = 0
	err := Validate(f)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be greater than or equal to 1", valErr.Fields()["quantity"])
}

func TestValidate_StringMax(t *testing.T) {
	f := validForm()
	f.Phone = strings.Repeat("9", 25)
	err := Validate(f)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 20 characters", valErr.Fields()["shipping_phone"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(addressForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'shipping_address'")
	assert.Contains(t, err.Error(), "is required")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"shipping_address":"1 Nile St","payment_method":"cash_on_delivery","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var f addressForm
	err := DecodeAndValidate(req, &f)

	require.NoError(t, err)
	assert.Equal(t, "1 Nile St", f.Address)
	assert.Equal(t, 2, f.Qty)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var f addressForm
	err := DecodeAndValidate(req, &f)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
