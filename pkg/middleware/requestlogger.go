package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

// UserResolver returns the signed-in shopper's ID for a request, or "".
type UserResolver func(ctx context.Context) string

// RequestLogger stores a logger enriched with correlation_id, user_id,
// trace_id and span_id in the request context. Mount it after RequestLogging
// and Tracing. Handlers fetch it with logger.FromContext.
func RequestLogger(base *slog.Logger, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if users != nil {
				if userID := users(ctx); userID != "" {
					ctx = logger.WithUserID(ctx, userID)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
