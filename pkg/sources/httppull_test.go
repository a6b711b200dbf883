package sources

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPPullReaderFetchesSubmissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "bitespeed-client-test" {
			t.Fatalf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"email":"a@x.com"},{"phoneNumber":"123"}]`)
	}))
	defer srv.Close()

	reader := NewHTTPPullReader(nil)
	subs, err := reader.Read(context.Background(), Source{
		ID:       "pull",
		Type:     TypeHTTPPull,
		Location: srv.URL,
		Config:   map[string]any{ConfigUserAgentKey: "bitespeed-client-test"},
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(subs) != 2 || subs[0].Email != "a@x.com" || subs[1].PhoneNumber != "123" {
		t.Fatalf("unexpected submissions %#v", subs)
	}
}

func TestHTTPPullReaderErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	reader := NewHTTPPullReader(nil)
	_, err := reader.Read(context.Background(), Source{
		ID:       "pull",
		Type:     TypeHTTPPull,
		Location: srv.URL,
	})
	if err == nil {
		t.Fatalf("expected error on 503 response")
	}
}
