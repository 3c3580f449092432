package crawlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StartupDigest/internal/infrastructure/fetch"
)

func newTestClient() *fetch.Client {
	return fetch.New(5*time.Second, 0, "test-agent")
}

// serveHTML returns a server answering every request with the given page.
func serveHTML(t *testing.T, page string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func serveStatus(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}
