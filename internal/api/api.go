// Package api holds the typed bindings for the storefront backend's cart,
// order and payment endpoints. Every call goes through the shared
// httpclient.API request layer.
package api

import (
	"context"
	"net/url"

	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"
)

// Requester is the subset of *httpclient.API the bindings use.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

var _ Requester = (*httpclient.API)(nil)

// MessageResponse is the {message} acknowledgement most mutations return.
type MessageResponse struct {
	Message string `json:"message"`
}
