package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"pl", "pl"},
		{"pl-PL", "pl"},
		{"de-AT", "de"},
		{"en-GB", "en"},
		{"ja", "en"},
		{"", "en"},
		{"!!", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(tt.input))
		})
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for i, code := range supportedCode {
		for key := range english {
			_, ok := catalogs[i][key]
			assert.True(t, ok, "%s catalog is missing %q", code, key)
		}
		assert.Len(t, catalogs[i], len(english), "%s catalog has extra keys", code)
	}
}

func TestTranslate_Fallbacks(t *testing.T) {
	assert.Equal(t, "Ten folder jest pusty", Translate("pl", "folder.empty"))
	assert.Equal(t, "This folder is empty", Translate("xx", "folder.empty"))
	assert.Equal(t, "no.such.key", Translate("pl", "no.such.key"))
	assert.Equal(t, "3 uploaded, 1 failed", Translate("en", "upload.summary", 3, 1))
}

func TestProvider_SetLanguage(t *testing.T) {
	p := NewProvider("")
	assert.Equal(t, "en", p.Language())
	lookup := p.Lookup()

	assert.Equal(t, "de", p.SetLanguage("de-DE"))
	assert.Equal(t, "Abgemeldet", p.T("logout.success"))
	assert.Equal(t, "Abgemeldet", lookup("logout.success"), "lookup follows the active language")

	assert.True(t, IsSupported("pl"))
	assert.False(t, IsSupported("pl-PL"))
	assert.Equal(t, []string{"en", "pl", "de"}, Supported())
}
