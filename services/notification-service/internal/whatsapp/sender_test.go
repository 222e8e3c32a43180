package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0991234567", "+593991234567", true},
		{"991234567", "+593991234567", true},
		{"593991234567", "+593991234567", true},
		{"+593991234567", "+593991234567", true},
		{"099 123 4567", "+593991234567", true},
		{"(099) 123-4567", "+593991234567", true},
		{"12345", "", false},
		{"+14155550123", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizePhone(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizePhone(%q) = %q,%v; expected %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestWebhookSender_SendsNormalizedNumber(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, "secret")
	if err := s.Send(context.Background(), "0991234567", "hola"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["to"] != "+593991234567" {
		t.Fatalf("expected normalized number, got %q", got["to"])
	}
	if got["body"] != "hola" {
		t.Fatalf("expected body preserved, got %q", got["body"])
	}
	if auth != "Bearer secret" {
		t.Fatalf("expected bearer token header, got %q", auth)
	}
}

func TestWebhookSender_RejectsBadNumber(t *testing.T) {
	s := NewWebhookSender("http://localhost:1", "")
	if err := s.Send(context.Background(), "12345", "hola"); err == nil {
		t.Fatal("expected error for non-normalizable number")
	}
}

func TestWebhookSender_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL, "")
	if err := s.Send(context.Background(), "0991234567", "hola"); err == nil {
		t.Fatal("expected error for 502 response")
	}
}
