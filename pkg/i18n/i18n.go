// Package i18n resolves user-facing fallback strings for the client.
package i18n

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultLocale is the locale the blog is written in.
	DefaultLocale = "tr-TR"
	// BaseLocale is consulted when a key is missing in the requested locale.
	BaseLocale = "en-US"
)

var (
	registerOnce sync.Once
	supported    = []language.Tag{language.MustParse(DefaultLocale), language.MustParse(BaseLocale)}
	matcher      = language.NewMatcher(supported)
)

// Translator formats catalog messages for one locale with base-locale fallback.
type Translator struct {
	locale  string
	printer *message.Printer
	base    *message.Printer
}

// New builds a translator for the closest supported locale; empty or invalid
// locales resolve to DefaultLocale.
func New(locale string) *Translator {
	registerOnce.Do(register)

	resolved := supported[0]
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		if tag, err := language.Parse(trimmed); err == nil {
			_, idx, _ := matcher.Match(tag)
			resolved = supported[idx]
		}
	}
	return &Translator{
		locale:  resolved.String(),
		printer: message.NewPrinter(resolved),
		base:    message.NewPrinter(language.MustParse(BaseLocale)),
	}
}

// Locale returns the resolved catalog locale.
func (t *Translator) Locale() string {
	if t == nil {
		return DefaultLocale
	}
	return t.locale
}

// T returns the message for key; the key itself is returned when no catalog defines it.
func (t *Translator) T(key string, args ...any) string {
	if t == nil {
		return fallbackFormat(key, args...)
	}
	if _, ok := catalogs[t.locale][key]; ok {
		return t.printer.Sprintf(key, args...)
	}
	if _, ok := catalogs[BaseLocale][key]; ok {
		return t.base.Sprintf(key, args...)
	}
	return fallbackFormat(key, args...)
}

func fallbackFormat(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf(key, args...)
}

func register() {
	for locale, messages := range catalogs {
		tag := language.MustParse(locale)
		tags := []language.Tag{tag}
		if base, _ := tag.Base(); base.String() != "und" {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range messages {
			for _, registerTag := range tags {
				_ = message.SetString(registerTag, key, value)
			}
		}
	}
}
