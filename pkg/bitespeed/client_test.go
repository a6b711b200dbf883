package bitespeed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestCheckHealthStatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		healthy bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{http.StatusNoContent, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(tc.status)
		}))

		client := New(srv.URL, nil, nil)
		if got := client.CheckHealth(context.Background()); got != tc.healthy {
			t.Fatalf("status %d: CheckHealth = %v, want %v", tc.status, got, tc.healthy)
		}
		srv.Close()
	}
}

func TestCheckHealthCollapsesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // connection refused from here on

	client := New(srv.URL, nil, nil)
	if client.CheckHealth(context.Background()) {
		t.Fatalf("expected false for unreachable server")
	}
}

func TestCheckHealthIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, nil, nil)
	first := client.CheckHealth(context.Background())
	second := client.CheckHealth(context.Background())
	if !first || first != second {
		t.Fatalf("expected two true results, got %v then %v", first, second)
	}
}

func TestIdentifyParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/identify" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("Content-Type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"contact":{"primaryContactId":1,"emails":["a@x.com"],"phoneNumbers":["123"],"secondaryContactIds":[]}}`)
	}))
	defer srv.Close()

	client := New(srv.URL, nil, nil)
	resp, err := client.Identify(context.Background(), IdentifyRequest{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}

	want := ContactResponse{Contact: Contact{
		PrimaryContactID:    1,
		Emails:              []string{"a@x.com"},
		PhoneNumbers:        []string{"123"},
		SecondaryContactIDs: []string{},
	}}
	if !reflect.DeepEqual(*resp, want) {
		t.Fatalf("response mismatch:\n got %#v\nwant %#v", *resp, want)
	}
}

func TestIdentifyRequestBodyOmitsAbsentFields(t *testing.T) {
	cases := []struct {
		req  IdentifyRequest
		body string
	}{
		{IdentifyRequest{Email: "a@x.com"}, `{"email":"a@x.com"}`},
		{IdentifyRequest{PhoneNumber: "123"}, `{"phoneNumber":"123"}`},
		{IdentifyRequest{Email: "a@x.com", PhoneNumber: "123"}, `{"email":"a@x.com","phoneNumber":"123"}`},
	}

	for _, tc := range cases {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			got = strings.TrimSpace(string(raw))
			io.WriteString(w, `{"contact":{"primaryContactId":1,"emails":[],"phoneNumbers":[],"secondaryContactIds":[]}}`)
		}))

		client := New(srv.URL, nil, nil)
		if _, err := client.Identify(context.Background(), tc.req); err != nil {
			t.Fatalf("Identify: %v", err)
		}
		if got != tc.body {
			t.Fatalf("request body = %s, want %s", got, tc.body)
		}
		srv.Close()
	}
}

func TestIdentifyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "email or phoneNumber required", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(srv.URL, nil, nil)
	_, err := client.Identify(context.Background(), IdentifyRequest{})
	if err == nil {
		t.Fatalf("expected error on 400 response")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusBadRequest {
		t.Fatalf("Code = %d, want 400", statusErr.Code)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("error should reference status 400: %v", err)
	}
}

func TestIdentifyPropagatesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	client := New(srv.URL, nil, nil)
	resp, err := client.Identify(context.Background(), IdentifyRequest{Email: "a@x.com"})
	if err == nil {
		t.Fatalf("expected transport error to propagate")
	}
	if resp != nil {
		t.Fatalf("expected nil response on failure, got %#v", resp)
	}
}

func TestIdentifyRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "not-json")
	}))
	defer srv.Close()

	client := New(srv.URL, nil, nil)
	if _, err := client.Identify(context.Background(), IdentifyRequest{Email: "a@x.com"}); err == nil {
		t.Fatalf("expected decode error for malformed body")
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	client := New("http://localhost:8080/", nil, nil)
	if client.BaseURL() != "http://localhost:8080" {
		t.Fatalf("BaseURL = %q", client.BaseURL())
	}
}
