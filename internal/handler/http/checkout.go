package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/checkout"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httputil"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/validator"
)

// Checkout is the orchestrator as the view server drives it.
type Checkout interface {
	ActiveSession() *checkout.Session
	Submit(ctx context.Context, sess *checkout.Session) (*checkout.Outcome, error)
}

// CheckoutHandler handles the place-order command.
type CheckoutHandler struct {
	checkout Checkout
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(c Checkout, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: c, logger: logger}
}

// CheckoutRequest is the JSON request body for placing an order.
type CheckoutRequest struct {
	domain.ShippingForm
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

// Submit handles POST /api/checkout. The outcome is returned on failure too,
// so the view can follow navigate_to and show the notifications.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := h.checkout.ActiveSession()
	if err := sess.SetShippingForm(req.ShippingForm); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := sess.SelectPaymentMethod(req.PaymentMethod); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out, err := h.checkout.Submit(r.Context(), sess)
	if err == nil {
		httputil.WriteData(w, http.StatusOK, out)
		return
	}

	status, body := checkoutError(err)
	body.RequestID = logger.CorrelationIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "checkout failed",
			slog.String("error", err.Error()),
		)
	}
	httputil.WriteJSON(w, status, httputil.Response{Data: out, Error: body})
}

func checkoutError(err error) (int, *httputil.ErrorResponse) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, &httputil.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: valErr.First(),
			Fields:  valErr.Fields(),
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		return appErr.Status, &httputil.ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	}
	return http.StatusBadGateway, &httputil.ErrorResponse{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: apperrors.UserMessage(err, checkout.MsgPlaceOrderFailed),
	}
}
