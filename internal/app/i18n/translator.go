package i18n

import (
	"context"
	"time"

	"golang.org/x/text/message"
)

// Translator renders catalog messages, numbers and dates for one locale.
// The zero value is not usable; build one with For or NewTranslator.
type Translator struct {
	Locale  Locale
	bundle  *Bundle
	printer *message.Printer
}

// NewTranslator binds a bundle to a locale.
func NewTranslator(b *Bundle, l Locale) Translator {
	return Translator{Locale: l, bundle: b, printer: b.Printer(l.Tag)}
}

// For returns a translator over the default bundle.
func For(l Locale) Translator {
	return NewTranslator(Default(), l)
}

// T returns the message for key formatted with args. Unknown keys render
// as the key itself.
func (t Translator) T(key string, args ...any) string {
	if t.printer == nil {
		return key
	}
	return t.printer.Sprintf(key, args...)
}

// Has reports whether key exists in the catalogs.
func (t Translator) Has(key string) bool {
	_, ok := t.bundle.Message(t.Locale.Code, key)
	return ok
}

// N formats an integer with the locale's digit grouping.
func (t Translator) N(n int64) string {
	if t.printer == nil {
		return message.NewPrinter(BaseLocale.Tag).Sprintf("%d", n)
	}
	return t.printer.Sprintf("%d", n)
}

// Count is N for int values, which templates cannot convert themselves.
func (t Translator) Count(n int) string { return t.N(int64(n)) }

// Date formats t with the locale's date layout.
func (t Translator) Date(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(t.layout("core.format.date", "Jan 2, 2006"))
}

// DateTime formats t with the locale's date-time layout.
func (t Translator) DateTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(t.layout("core.format.datetime", "Jan 2, 2006 3:04 PM"))
}

func (t Translator) layout(key, def string) string {
	if v, ok := t.bundle.Message(t.Locale.Code, key); ok && v != "" {
		return v
	}
	return def
}

// Lang returns the locale code for the html lang attribute.
func (t Translator) Lang() string { return t.Locale.Code }

// Dir returns "rtl" or "ltr".
func (t Translator) Dir() string { return t.Locale.Dir() }

type ctxKey struct{}

// WithTranslator stores t on ctx.
func WithTranslator(ctx context.Context, t Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the request translator, or the base-locale one when
// no middleware ran.
func FromContext(ctx context.Context) Translator {
	if t, ok := ctx.Value(ctxKey{}).(Translator); ok {
		return t
	}
	return For(BaseLocale)
}
