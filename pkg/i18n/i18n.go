// Package i18n maps a language code to a string lookup function.
package i18n

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
)

// Lookup resolves a message key, formatting args into it.
type Lookup func(key string, args ...any) string

var (
	supportedTags = []language.Tag{language.English, language.Polish, language.German}
	supportedCode = []string{"en", "pl", "de"}
	catalogs      = []map[string]string{english, polish, german}
	matcher       = language.NewMatcher(supportedTags)
)

// Supported lists the available language codes; the first is the fallback.
func Supported() []string {
	return append([]string(nil), supportedCode...)
}

// Match resolves any BCP 47 code ("pl-PL", "de_AT", "") to a supported code.
func Match(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return supportedCode[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return supportedCode[0]
	}
	return supportedCode[idx]
}

// IsSupported reports whether code names a catalog exactly.
func IsSupported(code string) bool {
	for _, c := range supportedCode {
		if c == code {
			return true
		}
	}
	return false
}

// Translate looks key up in the catalog for code, falling back to English
// and then to the key itself.
func Translate(code, key string, args ...any) string {
	msg := ""
	for i, c := range supportedCode {
		if c == code {
			msg = catalogs[i][key]
			break
		}
	}
	if msg == "" {
		msg = english[key]
	}
	if msg == "" {
		msg = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Provider holds the active language for the application.
type Provider struct {
	mu   sync.RWMutex
	lang string
}

// NewProvider starts with the best supported match for code.
func NewProvider(code string) *Provider {
	return &Provider{lang: Match(code)}
}

func (p *Provider) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

// SetLanguage switches the active language and returns the code actually used.
func (p *Provider) SetLanguage(code string) string {
	matched := Match(code)
	p.mu.Lock()
	p.lang = matched
	p.mu.Unlock()
	return matched
}

// T translates key in the active language.
func (p *Provider) T(key string, args ...any) string {
	return Translate(p.Language(), key, args...)
}

// Lookup returns a lookup function bound to the active language at call time.
func (p *Provider) Lookup() Lookup {
	return p.T
}
