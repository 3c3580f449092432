package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTextSetsUserAgentAndHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "digest-agent" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("X-Custom") != "yes" {
			t.Errorf("X-Custom = %q", r.Header.Get("X-Custom"))
		}
		_, _ = w.Write([]byte("본문"))
	}))
	t.Cleanup(server.Close)

	client := New(5*time.Second, 0, "digest-agent")
	body, err := client.Text(context.Background(), server.URL, Options{
		Headers: map[string]string{"X-Custom": "yes"},
	})
	if err != nil {
		t.Fatalf("Text error: %v", err)
	}
	if body != "본문" {
		t.Fatalf("body = %q", body)
	}
}

func TestNonSuccessStatusIsTypedError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := New(5*time.Second, 0, "digest-agent")
	_, err := client.Text(context.Background(), server.URL, Options{})
	if err == nil {
		t.Fatalf("expected error for 503")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fetchErr.Kind != KindHTTPStatus || fetchErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected error: %+v", fetchErr)
	}
}

func TestTimeoutIsClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	client := New(50*time.Millisecond, 0, "digest-agent")
	_, err := client.Text(context.Background(), server.URL, Options{})
	if err == nil {
		t.Fatalf("expected timeout error")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fetchErr.Kind != KindTimeout {
		t.Fatalf("expected timeout kind, got %d (%v)", fetchErr.Kind, err)
	}
}

func TestJSONDecodesBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"count": 3}`))
	}))
	t.Cleanup(server.Close)

	client := New(5*time.Second, 0, "digest-agent")
	var payload struct {
		Count int `json:"count"`
	}
	if err := client.JSON(context.Background(), server.URL, Options{}, &payload); err != nil {
		t.Fatalf("JSON error: %v", err)
	}
	if payload.Count != 3 {
		t.Fatalf("count = %d", payload.Count)
	}
}

func TestJSONMalformedBodyIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{broken`))
	}))
	t.Cleanup(server.Close)

	client := New(5*time.Second, 0, "digest-agent")
	var payload map[string]any
	if err := client.JSON(context.Background(), server.URL, Options{}, &payload); err == nil {
		t.Fatalf("expected decode error")
	}
}
