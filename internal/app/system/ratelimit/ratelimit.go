// Package ratelimit throttles login attempts with fixed windows keyed by
// client IP and by account.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts events per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New returns a limiter allowing limit events per period for each key.
// Expired windows are swept in the background until Stop is called.
func New(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep(2 * period)
	return l
}

// Allow records an event for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many events key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for k, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP returns the caller's address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Localization keys returned by LoginLimiter.Check.
const (
	KeyTooManyFromIP     = "auth.error.rate_ip"
	KeyTooManyForAccount = "auth.error.rate_account"
)

// LoginLimiter applies a per-IP limit and a stricter per-login limit.
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter allows perIP attempts per window from one address and
// half as many (at least one) per login across all addresses.
func NewLoginLimiter(perIP int, window time.Duration) *LoginLimiter {
	if perIP <= 0 {
		perIP = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{
		ip:      New(perIP, window),
		account: New(max(perIP/2, 1), 5*window),
	}
}

// Check records an attempt. When it is refused the second value is the
// localization key of the message to show.
func (ll *LoginLimiter) Check(r *http.Request, login string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, KeyTooManyFromIP
	}
	if key := accountKey(login); key != "" && !ll.account.Allow(key) {
		return false, KeyTooManyForAccount
	}
	return true, ""
}

// Succeeded clears the per-login counter after a good sign-in.
func (ll *LoginLimiter) Succeeded(login string) {
	if key := accountKey(login); key != "" {
		ll.account.Reset(key)
	}
}

// Stop ends both background sweeps.
func (ll *LoginLimiter) Stop() {
	ll.ip.Stop()
	ll.account.Stop()
}

func accountKey(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
