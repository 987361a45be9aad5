package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToHreflang normalises the casing of a locale code for hreflang attributes:
// language lower, 4-letter script title-cased, region upper. Codes with more
// than three subtags are returned unchanged.
func ToHreflang(code string) string {
	parts := strings.Split(code, "-")

	switch len(parts) {
	case 1:
		return strings.ToLower(code)
	case 2:
		if len(parts[1]) == 4 {
			return strings.ToLower(parts[0]) + "-" + title(parts[1])
		}
		return strings.ToLower(parts[0]) + "-" + strings.ToUpper(parts[1])
	case 3:
		return strings.ToLower(parts[0]) + "-" + title(parts[1]) + "-" + strings.ToUpper(parts[2])
	default:
		return code
	}
}

// a Caser holds state, so each call gets its own
func title(s string) string {
	return cases.Title(language.Und).String(s)
}
