package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/validator"
)

// UpstreamMessage is shown when the backend failed in a way the shopper
// cannot act on.
const UpstreamMessage = "the store is temporarily unavailable, please try again"

// Response is the JSON envelope of the view server.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are dropped
// because the header is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps data in the envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteError maps err onto the envelope. Backend rejections (4xx) keep the
// server's message; backend outages and transport failures become a 502 with
// a generic message and are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   valErr.First(),
			Fields:    valErr.Fields(),
			RequestID: requestID,
		}})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		WriteJSON(w, appErr.Status, Response{Error: &ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: requestID,
		}})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"
	if status >= http.StatusInternalServerError && (errors.Is(err, apperrors.ErrServiceUnavail) || errors.Is(err, apperrors.ErrTransport)) {
		status = http.StatusBadGateway
		code = "UPSTREAM_UNAVAILABLE"
		message = UpstreamMessage
	}

	l.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	WriteJSON(w, status, Response{Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID}})
}

// WriteValidationError writes a 400 for a malformed or invalid request body.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: valErr.First(),
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// ParseID reads a positive integer path parameter. On failure it writes a 400
// and returns false so the caller can return early.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid id: " + param,
			},
		})
		return 0, false
	}
	return id, true
}
