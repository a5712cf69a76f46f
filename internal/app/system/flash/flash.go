// Package flash provides one-time banner notices persisted across redirects
// in the session cookie.
package flash

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

// Kind classifies notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice is one banner. Key names a catalog message; Text, when set, is
// shown verbatim instead.
type Notice struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key,omitempty"`
	Text string `json:"text,omitempty"`
}

// Success builds a success notice for a catalog key.
func Success(key string) Notice { return Notice{Kind: KindSuccess, Key: key} }

// Error builds an error notice for a catalog key.
func Error(key string) Notice { return Notice{Kind: KindError, Key: key} }

// Info builds an info notice for a catalog key.
func Info(key string) Notice { return Notice{Kind: KindInfo, Key: key} }

const flashKey = "_notices"

// Flasher reads and writes notices on the session.
type Flasher struct {
	store sessions.Store
	name  string
}

// New binds a Flasher to a session store and cookie name.
func New(store sessions.Store, name string) *Flasher {
	return &Flasher{store: store, name: name}
}

// Add queues n for the next page render.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, n Notice) error {
	n, ok := normalize(n)
	if !ok {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	sess, _ := f.store.Get(r, f.name)
	sess.AddFlash(string(payload), flashKey)
	return sess.Save(r, w)
}

// Pop returns and clears queued notices.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Notice {
	sess, err := f.store.Get(r, f.name)
	if err != nil {
		return nil
	}
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	out := make([]Notice, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var n Notice
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			continue
		}
		if n, ok := normalize(n); ok {
			out = append(out, n)
		}
	}
	return out
}

func normalize(n Notice) (Notice, bool) {
	n.Key = strings.TrimSpace(n.Key)
	n.Text = strings.TrimSpace(n.Text)
	if n.Key == "" && n.Text == "" {
		return Notice{}, false
	}
	switch n.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
	default:
		n.Kind = KindInfo
	}
	return n, true
}

type ctxKey struct{}

// Middleware pops queued notices on full-page GET requests and makes them
// available through FromContext. Fragment (HX-Request) and non-GET requests
// leave the queue untouched so the notices survive until the next page.
func (f *Flasher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.Header.Get("HX-Request") == "true" {
			next.ServeHTTP(w, r)
			return
		}
		if notices := f.Pop(w, r); len(notices) > 0 {
			r = r.WithContext(WithNotices(r.Context(), notices))
		}
		next.ServeHTTP(w, r)
	})
}

// WithNotices stores notices on ctx.
func WithNotices(ctx context.Context, notices []Notice) context.Context {
	return context.WithValue(ctx, ctxKey{}, notices)
}

// FromContext returns the notices popped for this request.
func FromContext(ctx context.Context) []Notice {
	n, _ := ctx.Value(ctxKey{}).([]Notice)
	return n
}
