package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported UI language.
type Locale struct {
	Code string
	Tag  language.Tag
	Name string // endonym shown in the language switcher
	RTL  bool
}

// Dir returns the HTML dir attribute for the locale.
func (l Locale) Dir() string {
	if l.RTL {
		return "rtl"
	}
	return "ltr"
}

var (
	English = Locale{Code: "en", Tag: language.English, Name: "English"}
	French  = Locale{Code: "fr", Tag: language.French, Name: "Français"}
	Arabic  = Locale{Code: "ar", Tag: language.Arabic, Name: "العربية", RTL: true}

	// BaseLocale is the source locale every other catalog falls back to.
	BaseLocale = English

	// fallback is served when a request expresses no usable preference.
	fallback = BaseLocale

	supported = []Locale{English, French, Arabic}
	matcher   = language.NewMatcher([]language.Tag{English.Tag, French.Tag, Arabic.Tag})
)

// Supported returns the supported locales in display order.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Lookup finds a supported locale by code or BCP 47 tag ("fr", "fr-CA").
func Lookup(value string) (Locale, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Locale{}, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return Locale{}, false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return Locale{}, false
	}
	for _, l := range supported {
		if lb, _ := l.Tag.Base(); lb == base {
			return l, true
		}
	}
	return Locale{}, false
}

// SetFallback makes code the locale served when a request names none.
func SetFallback(code string) error {
	l, ok := Lookup(code)
	if !ok {
		return fmt.Errorf("i18n: unsupported locale %q", code)
	}
	fallback = l
	return nil
}

// Fallback returns the locale served when a request names none.
func Fallback() Locale { return fallback }

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}
