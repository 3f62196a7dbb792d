package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
)

// ConflictError reports that the backend refused to create an order because
// one already exists for the shopper. The backend signals this either with a
// 409 or with a 400 whose body names the existing order.
type ConflictError struct {
	Status              int
	Message             string
	ExistingOrderID     int64
	ExistingOrderNumber string
}

func (e *ConflictError) Error() string {
	if e.ExistingOrderNumber != "" {
		return fmt.Sprintf("order %s already exists: %s", e.ExistingOrderNumber, e.Message)
	}
	return fmt.Sprintf("order %d already exists: %s", e.ExistingOrderID, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return apperrors.ErrConflict
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an error. The user-facing message is taken from the backend payload
// (`detail`, `error`, `message`, or the first field error); bodies naming an
// existing order become a *ConflictError.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	return errorFromBody(resp.StatusCode, bodyBytes)
}

func errorFromBody(status int, body []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		fields = nil
	}

	message := extractMessage(fields)

	if status == http.StatusConflict || status == http.StatusBadRequest {
		if id, number, ok := existingOrder(fields); ok {
			if message == "" {
				message = "an order already exists"
			}
			return &ConflictError{
				Status:              status,
				Message:             message,
				ExistingOrderID:     id,
				ExistingOrderNumber: number,
			}
		}
	}

	return mapStatus(status, message)
}

// mapStatus translates a backend status code into an AppError. 5xx errors
// keep the status so callers fall back to their generic message.
func mapStatus(status int, message string) error {
	text := message
	if text == "" && status < 500 {
		text = strings.ToLower(http.StatusText(status))
	}

	switch {
	case status == http.StatusNotFound:
		if text == "" || text == "not found" {
			text = "resource not found"
		}
		return &apperrors.AppError{Code: "NOT_FOUND", Message: text, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(text)
	case status == http.StatusConflict:
		return apperrors.Conflict(text)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(text)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(text)
	case status == http.StatusUnprocessableEntity:
		return apperrors.PaymentFailed(text)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(text)
	case status >= 500:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: text,
			Status:  status,
			Err:     apperrors.ErrServiceUnavail,
		}
	default:
		return &apperrors.AppError{
			Code:    "HTTP_" + strconv.Itoa(status),
			Message: text,
			Status:  status,
		}
	}
}

// extractMessage picks the user-facing message out of a backend error body.
func extractMessage(fields map[string]json.RawMessage) string {
	if fields == nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if msg := messageFrom(fields[key]); msg != "" {
			return msg
		}
	}
	if msg := messageFrom(fields["non_field_errors"]); msg != "" {
		return msg
	}

	// Serializer errors: {"quantity": ["Ensure this value is greater than 0."]}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var list []string
		if json.Unmarshal(fields[k], &list) == nil && len(list) > 0 {
			return k + ": " + list[0]
		}
	}
	return ""
}

// messageFrom accepts a plain string, a list of strings, or an
// {"message": "..."} envelope.
func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	var envelope struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		return strings.TrimSpace(envelope.Message)
	}
	return ""
}

// existingOrder reads the existing order reference from a conflict body.
// `order_id` is what the backend sends when it rejects a recent pending order.
func existingOrder(fields map[string]json.RawMessage) (int64, string, bool) {
	if fields == nil {
		return 0, "", false
	}
	id, idOK := flexibleID(fields["existing_order_id"])
	if !idOK {
		id, idOK = flexibleID(fields["order_id"])
	}
	var number string
	if raw, ok := fields["existing_order_number"]; ok {
		_ = json.Unmarshal(raw, &number)
	}
	return id, number, idOK || number != ""
}

// flexibleID accepts both 42 and "42".
func flexibleID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(t)
	default:
		return 0, false
	}
	id, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
