package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// categoryAliases maps known spellings used by the backend to their display form.
var categoryAliases = map[string]string{
	"eletronics":    "Electronics",
	"fansy":         "Fancy",
	"birthdayspary": "Birthday Spray",
}

// CanonicalCategory returns the display form of a category. Known spellings are
// mapped through a fixed table, everything else is title-cased from its lower-cased
// form. Applying it to its own output returns the same value.
func CanonicalCategory(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return ""
	}
	if display, ok := categoryAliases[lower]; ok {
		return display
	}
	for _, display := range categoryAliases {
		if strings.ToLower(display) == lower {
			return display
		}
	}
	first, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(first)) + lower[size:]
}
