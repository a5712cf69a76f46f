// Package i18n loads the embedded message catalogs, resolves the locale
// for a request and formats localized strings, numbers and dates.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds every locale's messages and the x/text catalog built from
// them. Locales missing a key inherit the base locale's message.
type Bundle struct {
	messages map[string]map[string]string
	builder  *catalog.Builder
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the process-wide bundle built from the embedded catalogs.
func Default() *Bundle {
	defaultOnce.Do(func() {
		b, err := LoadFromFS(embeddedFS)
		if err != nil {
			panic(err)
		}
		defaultBundle = b
	})
	return defaultBundle
}

// LoadFromFS reads locales/<locale>/<namespace>.yaml files from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{messages: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.addFile(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := b.messages[BaseLocale.Code]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale.Code)
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) addFile(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	if strings.TrimSpace(file.Locale) != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, file.Locale, localeFromPath)
	}
	if strings.TrimSpace(file.Namespace) != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename %q", p, file.Namespace, namespaceFromPath)
	}
	if _, ok := Lookup(localeFromPath); !ok {
		return fmt.Errorf("catalog %s: unsupported locale %q", p, localeFromPath)
	}

	msgs, ok := b.messages[localeFromPath]
	if !ok {
		msgs = map[string]string{}
		b.messages[localeFromPath] = msgs
	}
	for key, value := range file.Messages {
		k := strings.TrimSpace(key)
		if k == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		if !strings.HasPrefix(k, namespaceFromPath+".") {
			return fmt.Errorf("catalog %s: key %q must start with %q", p, k, namespaceFromPath+".")
		}
		if _, dup := msgs[k]; dup {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, k, localeFromPath)
		}
		msgs[k] = value
	}
	return nil
}

// build registers every key for every supported locale, filling gaps from
// the base locale so printers never fall back to the raw key for known keys.
func (b *Bundle) build() error {
	b.builder = catalog.NewBuilder(catalog.Fallback(BaseLocale.Tag))
	base := b.messages[BaseLocale.Code]
	for _, loc := range Supported() {
		own := b.messages[loc.Code]
		for key, value := range base {
			if v, ok := own[key]; ok && v != "" {
				value = v
			}
			if err := b.builder.SetString(loc.Tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", loc.Code, key, err)
			}
		}
		for key, value := range own {
			if _, inBase := base[key]; inBase {
				continue
			}
			if err := b.builder.SetString(loc.Tag, key, value); err != nil {
				return fmt.Errorf("register %s/%s: %w", loc.Code, key, err)
			}
		}
	}
	return nil
}

// Message returns the raw message for key, falling back to the base locale.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if v, ok := b.messages[locale][key]; ok {
		return v, true
	}
	v, ok := b.messages[BaseLocale.Code][key]
	return v, ok
}

// Keys returns the sorted keys defined for locale (without fallback).
func (b *Bundle) Keys(locale string) []string {
	out := make([]string, 0, len(b.messages[locale]))
	for k := range b.messages[locale] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Printer returns an x/text printer bound to this bundle's catalog.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(b.builder))
}
