// Package i18n translates the few user-facing strings the server produces:
// reveal block titles and real-time notifications.
//
// Translation files are nested JSON flattened to dot keys:
//
//	{"reveal": {"title": {"1": "Anonymous Name"}}}  →  "reveal.title.1"
//
// Lookup falls back to English, then to the key itself.
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "en"

// SupportedLanguages lists the locale files Load expects, default first.
var SupportedLanguages = []string{"en", "es"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	messages map[string]map[string]string
}

// Load reads <lang>.json for every supported language from localesFS.
func Load(localesFS fs.FS) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string)}

	for _, lang := range SupportedLanguages {
		fileName := lang + ".json"

		data, err := fs.ReadFile(localesFS, fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", fileName, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
		}

		flat := make(map[string]string)
		flattenMap("", nested, flat)
		c.messages[lang] = flat

		log.Printf("[i18n] loaded %d keys for language: %s", len(flat), lang)
	}

	return c, nil
}

// Localizer translates into one language.
type Localizer struct {
	catalog *Catalog
	lang    string
}

// Localizer returns a translator for lang, falling back to DefaultLanguage
// for unsupported codes.
func (c *Catalog) Localizer(lang string) *Localizer {
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{catalog: c, lang: lang}
}

// Lang is the resolved language code.
func (l *Localizer) Lang() string { return l.lang }

// T translates key.
func (l *Localizer) T(key string) string {
	if l == nil || l.catalog == nil {
		return key
	}
	if msg, ok := l.catalog.messages[l.lang][key]; ok {
		return msg
	}
	if msg, ok := l.catalog.messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams translates key and substitutes {{name}} placeholders.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage picks the best supported language for an Accept-Language
// header value.
func DetectLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
