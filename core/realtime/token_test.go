package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/session" {
			t.Errorf("expected /session, got %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"client_secret": {"value": "ek_test", "expires_at": 1700000000},
			"voice": "Rex",
			"instructions": "Be brief."
		}`))
	}))
	defer server.Close()

	grant, err := NewTokenClient(server.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("expected fetch to succeed, got %v", err)
	}
	if grant.Token != "ek_test" {
		t.Fatalf("expected token %q, got %q", "ek_test", grant.Token)
	}
	if grant.Voice != "Rex" {
		t.Fatalf("expected voice %q, got %q", "Rex", grant.Voice)
	}
	if grant.Instructions != "Be brief." {
		t.Fatalf("expected instructions to pass through, got %q", grant.Instructions)
	}
	if expected := time.Unix(1700000000, 0); !grant.ExpiresAt.Equal(expected) {
		t.Fatalf("expected expiry %v, got %v", expected, grant.ExpiresAt)
	}
}

func TestTokenClientFetchErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200 status", status: http.StatusInternalServerError, body: `{}`},
		{name: "endpoint-level error", status: http.StatusOK, body: `{"error": "no capacity"}`},
		{name: "missing token", status: http.StatusOK, body: `{"client_secret": {"value": ""}}`},
		{name: "malformed body", status: http.StatusOK, body: `{"client_secret":`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				w.Write([]byte(testCase.body))
			}))
			defer server.Close()

			if _, err := NewTokenClient(server.URL).Fetch(context.Background()); err == nil {
				t.Fatal("expected fetch to fail")
			}
		})
	}
}
