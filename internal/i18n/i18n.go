// Package i18n translates user-facing strings of the login block.
//
// Source strings are English and double as message ids. Placeholders use the
// "@name" form and are substituted after lookup, so a catalog entry keeps its
// placeholders untouched:
//
//	tr.T("Login with @provider", i18n.Args{"@provider": "Google"})
//
// Catalogs are YAML files embedded from translations/<lang>.yaml. Locale
// negotiation uses golang.org/x/text/language against the configured locales.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var catalogFS embed.FS

// Args maps placeholders ("@provider") to their values.
type Args map[string]string

// Translator formats a source string for one locale.
type Translator interface {
	T(text string, args Args) string
	Locale() string
}

// Bundle holds one catalog per supported locale.
type Bundle struct {
	fallback language.Tag
	tags     []language.Tag
	matcher  language.Matcher
	catalogs map[string]map[string]string
}

// NewBundle loads the embedded catalogs for the given locales. The first locale
// is the fallback. English never needs a catalog.
func NewBundle(locales ...string) (*Bundle, error) {
	if len(locales) == 0 {
		locales = []string{"en"}
	}

	b := &Bundle{catalogs: make(map[string]map[string]string, len(locales))}
	for _, l := range locales {
		tag, err := language.Parse(strings.TrimSpace(l))
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %q: %w", l, err)
		}
		base, _ := tag.Base()
		code := base.String()

		msgs, err := loadCatalog(code)
		if err != nil {
			return nil, err
		}
		b.catalogs[code] = msgs
		b.tags = append(b.tags, tag)
	}
	b.fallback = b.tags[0]
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func loadCatalog(code string) (map[string]string, error) {
	if code == "en" {
		return map[string]string{}, nil
	}
	data, err := catalogFS.ReadFile(path.Join("translations", code+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("i18n: no catalog for %q: %w", code, err)
	}
	msgs := map[string]string{}
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("i18n: parse catalog %q: %w", code, err)
	}
	return msgs, nil
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (b *Bundle) Negotiate(acceptLanguage string) Translator {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.For(b.fallback.String())
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.For(b.fallback.String())
	}
	return b.For(b.tags[idx].String())
}

// For returns the translator of a locale, falling back to the default one.
func (b *Bundle) For(locale string) Translator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = b.fallback
	}
	base, _ := tag.Base()
	code := base.String()
	msgs, ok := b.catalogs[code]
	if !ok {
		fb, _ := b.fallback.Base()
		code = fb.String()
		msgs = b.catalogs[code]
	}
	return catalogTranslator{locale: code, msgs: msgs}
}

// Locales lists the supported locale codes in configuration order.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.tags))
	for i, t := range b.tags {
		out[i] = t.String()
	}
	return out
}

type catalogTranslator struct {
	locale string
	msgs   map[string]string
}

func (t catalogTranslator) Locale() string { return t.locale }

func (t catalogTranslator) T(text string, args Args) string {
	if tr, ok := t.msgs[text]; ok && tr != "" {
		text = tr
	}
	return Format(text, args)
}

// Format substitutes placeholders. Longer keys are replaced first so "@provider"
// never clobbers "@providers".
func Format(text string, args Args) string {
	if len(args) == 0 {
		return text
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, args[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Identity is a translator that only substitutes placeholders.
var Identity Translator = catalogTranslator{locale: "en"}

type ctxKey struct{}

// ToContext stores the request translator.
func ToContext(ctx context.Context, tr Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, tr)
}

// From returns the request translator, or Identity.
func From(ctx context.Context) Translator {
	if ctx != nil {
		if tr, ok := ctx.Value(ctxKey{}).(Translator); ok {
			return tr
		}
	}
	return Identity
}
