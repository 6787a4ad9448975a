package forwarder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"signal-desk/internal/domain"
)

func TestAPIClientLoginReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body loginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "bot@example.com" || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u1"},"token":"tok-1"}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/", "bot@example.com", "secret", time.Second)
	token, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("expected tok-1, got %q", token)
	}

	bad := NewAPIClient(srv.URL, "bot@example.com", "wrong", time.Second)
	if _, err := bad.Login(context.Background()); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestAPIClientLoginFallsBackToCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "cookie-tok"})
		_, _ = w.Write([]byte(`{"user":{"id":"u1"}}`))
	}))
	defer srv.Close()

	token, err := NewAPIClient(srv.URL, "a", "b", time.Second).Login(context.Background())
	if err != nil || token != "cookie-tok" {
		t.Fatalf("expected cookie token, got %q %v", token, err)
	}
}

func TestAPIClientLoginServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, "a", "b", time.Second).Login(context.Background())
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestAPIClientFetchSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("expected limit=5, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"signals":[{"id":"s1","pair":"EUR/USD","direction":"CALL","price":"1.08512","qualityScore":77}]}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "a", "b", time.Second)
	signals, err := c.FetchSignals(context.Background(), "good", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 1 || signals[0].ID != "s1" || signals[0].Price.String() != "1.08512" {
		t.Fatalf("unexpected signals: %+v", signals)
	}

	if _, err := c.FetchSignals(context.Background(), "expired", 5); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestAPIClientFetchSignalsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	c := NewAPIClient(srv.URL, "a", "b", time.Second)

	if _, err := c.FetchSignals(context.Background(), "t", 0); !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected transient error for 502, got %v", err)
	}

	srv.Close()
	if _, err := c.FetchSignals(context.Background(), "t", 0); !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected transient error for unreachable server, got %v", err)
	}
}

func TestCoarseDedupAdmit(t *testing.T) {
	d := NewCoarseDedup(3)

	unseen, reset := d.Admit([]string{"a", "b"})
	if reset || !equalIDs(unseen, []string{"a", "b"}) {
		t.Fatalf("unexpected first admit: %v %v", unseen, reset)
	}
	unseen, _ = d.Admit([]string{"c", "a", "d"})
	if !equalIDs(unseen, []string{"c", "d"}) || d.Len() != 4 {
		t.Fatalf("expected incremental add, got %v len=%d", unseen, d.Len())
	}

	unseen, reset = d.Admit([]string{"d", "e"})
	if !reset || !equalIDs(unseen, []string{"e"}) {
		t.Fatalf("expected wholesale reset, got %v %v", unseen, reset)
	}
	if d.Len() != 2 || !d.Contains("d") || !d.Contains("e") || d.Contains("a") {
		t.Fatalf("expected cache to equal the last poll, len=%d", d.Len())
	}
}
