package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(2, time.Minute)
	t.Cleanup(l.Stop)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("first two events should be allowed")
	}
	if l.Allow("k") {
		t.Error("third event should be refused")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining: got %d, want 0", got)
	}
	if !l.Allow("other") {
		t.Error("keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("k") {
		t.Error("event after window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	t.Cleanup(l.Stop)
	l.Allow("k")
	l.Reset("k")
	if got := l.Remaining("k"); got != 1 {
		t.Errorf("Remaining after reset: got %d, want 1", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded first hop", "203.0.113.9, 10.0.0.1", "", "10.0.0.2:4000", "203.0.113.9"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:4000", "198.51.100.7"},
		{"remote with port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiter(4, time.Minute)
	t.Cleanup(ll.Stop)

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "192.0.2.10:1234"

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Sam@Example.com"); !ok {
			t.Fatalf("attempt %d refused", i+1)
		}
	}
	ok, key := ll.Check(r, "sam@example.com")
	if ok || key != KeyTooManyForAccount {
		t.Errorf("third attempt for account: got (%v, %q)", ok, key)
	}

	ll.Succeeded("SAM@example.com")
	if ok, _ := ll.Check(r, "sam@example.com"); !ok {
		t.Error("attempt after success should be allowed")
	}

	ok, key = ll.Check(r, "someone@example.com")
	if ok || key != KeyTooManyFromIP {
		t.Errorf("fifth attempt from ip: got (%v, %q)", ok, key)
	}
}
