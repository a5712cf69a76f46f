package i18n

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "edusphere_lang"
)

// UserLocaleFunc returns the signed-in user's stored locale, or "".
type UserLocaleFunc func(r *http.Request) string

// Resolve determines the locale for r. Order: ?lang=, cookie, the signed-in
// user's stored preference, Accept-Language, base locale. The bool reports
// whether the choice came from ?lang= and should be persisted.
func Resolve(r *http.Request, userLocale UserLocaleFunc) (Locale, bool) {
	if r == nil {
		return BaseLocale, false
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if l, ok := Lookup(v); ok {
			return l, true
		}
	}
	if c, err := r.Cookie(LangCookieName); err == nil {
		if l, ok := Lookup(c.Value); ok {
			return l, false
		}
	}
	if userLocale != nil {
		if l, ok := Lookup(userLocale(r)); ok {
			return l, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		return Match(accept), false
	}
	return fallback, false
}

// SetLanguageCookie persists the chosen locale.
func SetLanguageCookie(w http.ResponseWriter, l Locale) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    l.Code,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExplicitFunc is called when a request picks its language with ?lang=,
// after the cookie is set. It runs before the page handler.
type ExplicitFunc func(w http.ResponseWriter, r *http.Request, l Locale)

// Middleware resolves the request locale, persists an explicit ?lang=
// choice to the cookie and through onExplicit (may be nil), and stores a
// Translator on the request context.
func Middleware(b *Bundle, userLocale UserLocaleFunc, onExplicit ExplicitFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc, persist := Resolve(r, userLocale)
			if persist {
				SetLanguageCookie(w, loc)
				if onExplicit != nil {
					onExplicit(w, r, loc)
				}
			}
			w.Header().Set("Content-Language", loc.Code)
			ctx := WithTranslator(r.Context(), NewTranslator(b, loc))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Option is a language-switcher entry.
type Option struct {
	Code   string
	Label  string
	Active bool
	URL    string
}

// Options builds the language switcher for the current request path.
func Options(active Locale, path, rawQuery string) []Option {
	out := make([]Option, 0, len(supported))
	for _, l := range supported {
		out = append(out, Option{
			Code:   l.Code,
			Label:  l.Name,
			Active: l.Code == active.Code,
			URL:    LanguageURL(path, rawQuery, l.Code),
		})
	}
	return out
}

// LanguageURL returns path with the lang parameter set to code.
func LanguageURL(path, rawQuery, code string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	q.Set(LangParam, code)
	return (&url.URL{Path: path, RawQuery: q.Encode()}).String()
}
