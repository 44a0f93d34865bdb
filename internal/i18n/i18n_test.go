package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackToEnglish(t *testing.T) {
	assert.Equal(t, T("en", "approved"), T("fr", "approved"))
	assert.Equal(t, T("en", "approved"), T("", "approved"))
}

func TestUnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "no_such_key", T("en", "no_such_key"))
}

func TestFormatting(t *testing.T) {
	got := T("en", "welcome", "Alice")
	assert.Contains(t, got, "Alice")

	got = T("hi", "payment_instr", "1 Month YouTube Premium", 20)
	assert.Contains(t, got, "1 Month YouTube Premium")
	assert.Contains(t, got, "₹20")
}

func TestAllLocalesShareKeys(t *testing.T) {
	en := tables["en"]
	for _, code := range Locales() {
		tbl := tables[code]
		for key := range en {
			if _, ok := tbl[key]; !ok {
				t.Errorf("locale %s missing key %s", code, key)
			}
		}
	}
}

func TestKeywordsCoversEveryLocale(t *testing.T) {
	kws := Keywords("btn_help")
	assert.Len(t, kws, len(Locales()))
	joined := strings.Join(kws, "|")
	assert.Contains(t, joined, "Help")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("en"))
	assert.True(t, Supported("hi"))
	assert.True(t, Supported("bn"))
	assert.False(t, Supported("de"))
}
