package report

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func pingRouter(client *Client) http.Handler {
	r := chi.NewRouter()
	NewHandler(client, slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(r)
	return r
}

func TestPingHandler(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
	}))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	cases := map[string]struct {
		client *Client
		want   int
	}{
		"healthy":   {client: NewClient(healthy.URL), want: http.StatusOK},
		"unhealthy": {client: NewClient(broken.URL), want: http.StatusServiceUnavailable},
		"missing":   {client: nil, want: http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			pingRouter(tc.client).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}
