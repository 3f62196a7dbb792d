package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	apperrors "github.com/muhammadmasoud/amazon-clone-sub000/pkg/errors"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

// Doer sends a prepared request. *Client and *CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer credential for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// DefaultPublicPaths are the endpoints that never carry a bearer token.
var DefaultPublicPaths = []string{
	"/auth/login/",
	"/auth/signup/",
	"/payments/stripe-config/",
	"/auth/verify-email/",
	"/auth/resend-verification/",
	"/auth/forgot-password/",
	"/auth/reset-password/",
}

// APIConfig configures the storefront request layer.
type APIConfig struct {
	// BaseURL is the backend API root, e.g. http://127.0.0.1:8000/api.
	BaseURL string

	// PublicPaths lists path fragments that must not carry the bearer token.
	PublicPaths []string

	// RequestsPerSecond caps outgoing requests. Zero disables the limiter.
	RequestsPerSecond float64
	Burst             int

	// Name labels logs and errors.
	Name string
}

// API is the single configured request layer every binding goes through. It
// attaches the bearer credential (except on public paths), tags requests with a
// correlation ID, traces and logs failures, and decodes JSON responses.
type API struct {
	baseURL string
	doer    Doer
	tokens  TokenSource
	public  []string
	limiter *rate.Limiter
	logger  *slog.Logger
	tracer  trace.Tracer
	name    string
}

// NewAPI builds the request layer.
func NewAPI(cfg APIConfig, doer Doer, tokens TokenSource, l *slog.Logger) (*API, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	public := cfg.PublicPaths
	if public == nil {
		public = DefaultPublicPaths
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	name := cfg.Name
	if name == "" {
		name = "storefront-api"
	}

	return &API{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		doer:    doer,
		tokens:  tokens,
		public:  public,
		limiter: limiter,
		logger:  l,
		tracer:  otel.Tracer("github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"),
		name:    name,
	}, nil
}

// IsPublic reports whether path is on the unauthenticated whitelist.
func (a *API) IsPublic(path string) bool {
	for _, p := range a.public {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Get issues a GET and decodes the response into out.
func (a *API) Get(ctx context.Context, path string, query url.Values, out any) error {
	return a.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body.
func (a *API) Post(ctx context.Context, path string, body, out any) error {
	return a.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues a PATCH with a JSON body.
func (a *API) Patch(ctx context.Context, path string, body, out any) error {
	return a.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (a *API) Put(ctx context.Context, path string, body, out any) error {
	return a.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE.
func (a *API) Delete(ctx context.Context, path string, out any) error {
	return a.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request to the backend. Non-2xx responses are returned as the
// error ParseResponseError builds; transport failures wrap ErrTransport.
func (a *API) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := a.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	req, err := a.newRequest(ctx, method, path, query, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: rate limit wait: %w", method, path, err)
		}
	}

	l := logger.WithContext(ctx, a.logger).With(
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := a.doer.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return a.transportError(ctx, l, method, path, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := ParseResponseError(resp, a.name)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		logFailure(ctx, l, resp.StatusCode, respErr)
		return respErr
	}

	return decodeBody(resp, out)
}

// Ping checks that the backend answers HTTP at all. Any status counts as reachable.
func (a *API) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := a.doer.Do(ctx, req)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil
		}
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (a *API) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := a.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	req.Header.Set("X-Correlation-ID", correlationID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if a.tokens != nil && !a.IsPublic(path) {
		token, err := a.tokens.Token(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "credential lookup failed, sending unauthenticated",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

func (a *API) transportError(ctx context.Context, l *slog.Logger, method, path string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		// The breaker already turned a 5xx into a parsed backend error.
		logFailure(ctx, l, appErr.Status, err)
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		l.WarnContext(ctx, "backend circuit open, request rejected")
		return fmt.Errorf("%s %s: %w", method, path,
			apperrors.ServiceUnavailable("the store is temporarily unavailable"))
	default:
		l.ErrorContext(ctx, "backend request failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrTransport, err)
	}
}

func logFailure(ctx context.Context, l *slog.Logger, status int, err error) {
	attrs := []any{slog.Int("status", status), slog.String("error", err.Error())}
	if status >= 500 {
		l.ErrorContext(ctx, "backend server error", attrs...)
		return
	}
	l.WarnContext(ctx, "backend rejected request", attrs...)
}

func decodeBody(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w: %w", apperrors.ErrTransport, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w: %w", apperrors.ErrTransport, err)
	}
	return nil
}
