package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

// Claims is what the storefront reads from an access token. The signature
// is not checked here; the backend remains the authority.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the token expired before now. Tokens without an
// expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type accessClaims struct {
	UserID any `json:"user_id"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token's payload without verifying it.
func ParseClaims(token string) (Claims, error) {
	var ac accessClaims
	if _, _, err := jwt.NewParser(jwt.WithJSONNumber()).ParseUnverified(token, &ac); err != nil {
		return Claims{}, fmt.Errorf("parse access token: %w", err)
	}

	c := Claims{}
	switch {
	case ac.UserID != nil:
		c.UserID = fmt.Sprint(ac.UserID)
	case ac.Subject != "":
		c.UserID = ac.Subject
	}
	if ac.ExpiresAt != nil {
		c.ExpiresAt = ac.ExpiresAt.Time
	}
	return c, nil
}

// TokenSource feeds the stored credential to the HTTP adapter. Expired
// tokens are not sent; the request goes out unauthenticated and the backend
// answers 401.
type TokenSource struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

var _ httpclient.TokenSource = (*TokenSource)(nil)

func NewTokenSource(store Store, logger *slog.Logger) *TokenSource {
	return &TokenSource{store: store, logger: logger, now: time.Now}
}

// Token implements httpclient.TokenSource.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	token, err := s.store.Token(ctx)
	if err != nil || token == "" {
		return "", err
	}

	claims, err := ParseClaims(token)
	if err != nil {
		// Opaque tokens are passed through untouched.
		return token, nil
	}
	if claims.Expired(s.now()) {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "stored access token expired",
			slog.String("user_id", claims.UserID),
			slog.Time("expired_at", claims.ExpiresAt),
		)
		return "", nil
	}
	return token, nil
}

// UserID returns the signed-in shopper's id, or "" when there is none. It is
// shaped for middleware.UserResolver.
func (s *TokenSource) UserID(ctx context.Context) string {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return ""
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return ""
	}
	return claims.UserID
}
