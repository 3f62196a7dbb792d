package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/httpclient"
)

// newTestRequester points a real request layer at handler.
func newTestRequester(t *testing.T, handler http.HandlerFunc) *httpclient.API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 4})
	api, err := httpclient.NewAPI(httpclient.APIConfig{BaseURL: server.URL + "/api"}, client, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return api
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
