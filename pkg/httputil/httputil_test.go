package httputil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteData_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, map[string]int{"count": 3})

	var body map[string]map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3, body["data"]["count"])
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "backend rejection keeps message",
			err:     fmt.Errorf("PATCH /cart/update/1/: %w", apperrors.InvalidInput("Only 2 items available in stock")),
			status:  http.StatusBadRequest,
			code:    "INVALID_INPUT",
			message: "Only 2 items available in stock",
		},
		{
			name:    "not found",
			err:     apperrors.NotFound("order", "9"),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "order with id 9 not found",
		},
		{
			name:    "backend outage",
			err:     &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: "boom", Status: 500, Err: apperrors.ErrServiceUnavail},
			status:  http.StatusBadGateway,
			code:    "UPSTREAM_UNAVAILABLE",
			message: UpstreamMessage,
		},
		{
			name:    "transport",
			err:     fmt.Errorf("GET /cart/: %w: dial tcp: refused", apperrors.ErrTransport),
			status:  http.StatusBadGateway,
			code:    "UPSTREAM_UNAVAILABLE",
			message: UpstreamMessage,
		},
		{
			name:    "unknown",
			err:     fmt.Errorf("something odd"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)

			WriteError(rec, req, tt.err, testLogger())

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestWriteError_ValidationError(t *testing.T) {
	type body struct {
		Quantity int `json:"quantity" validate:"gt=0"`
	}
	err := validator.Validate(body{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/api/cart/items", nil), err, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "must be greater than 0", resp.Error.Fields["quantity"])
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "req-123"))

	WriteError(rec, req, apperrors.Forbidden("not your order"), testLogger())

	resp := decode(t, rec)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, fmt.Errorf("decode request body: unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestParseID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseID(rec, "42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		rec := httptest.NewRecorder()
		_, ok := ParseID(rec, bad)
		assert.False(t, ok, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestResponse_OmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Response{Data: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "error")
}
