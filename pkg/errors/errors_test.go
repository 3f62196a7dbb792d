package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden,
		ErrInternal, ErrConflict, ErrServiceUnavail, ErrPaymentFailed, ErrTransport,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "connection reset")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "order not found"}
	assert.Equal(t, "NOT_FOUND: order not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

// --- Constructor functions ---

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("order", "42"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("bad"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("dup"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"unauthorized", Unauthorized("login"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"payment failed", PaymentFailed("declined"), "PAYMENT_FAILED", http.StatusUnprocessableEntity, ErrPaymentFailed},
		{"unavailable", ServiceUnavailable("down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("order", "42")
	assert.Equal(t, "order with id 42 not found", err.Message)
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

// --- UserMessage ---

func TestUserMessage_ServerMessageVerbatim(t *testing.T) {
	err := InvalidInput("Insufficient stock. Available: 5")
	assert.Equal(t, "Insufficient stock. Available: 5", UserMessage(err, "Failed to add item to cart"))
}

func TestUserMessage_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("add to cart: %w", InvalidInput("Invalid promo code"))
	assert.Equal(t, "Invalid promo code", UserMessage(err, "fallback"))
}

func TestUserMessage_TransportFallsBack(t *testing.T) {
	err := fmt.Errorf("dial tcp: %w", ErrTransport)
	assert.Equal(t, "Failed to fetch cart", UserMessage(err, "Failed to fetch cart"))
}

func TestUserMessage_ServerErrorFallsBack(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(Internal(errors.New("x")), "fallback"))
}

func TestUserMessage_Nil(t *testing.T) {
	assert.Empty(t, UserMessage(nil, "fallback"))
}

// --- HTTPStatus for plain errors ---

func TestHTTPStatus_Sentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrTransport))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load order")
	assert.Equal(t, "load order: resource not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
