// Package phone normalises and validates UK phone numbers typed into forms.
package phone

import (
	"strings"

	cmstrings "childminder/pkg/platform/strings"
)

// Normalize strips separators and rewrites a +44 prefix to a leading 0.
func Normalize(s string) string {
	s = cmstrings.DigitsOnly(strings.TrimSpace(s))
	s = strings.NewReplacer("(", "", ")", "").Replace(s)
	if strings.HasPrefix(s, "+44") {
		s = "0" + strings.TrimPrefix(s, "+44")
	}
	return s
}

// ValidMobile accepts UK mobile numbers in 07xxx xxxxxx form.
func ValidMobile(s string) bool {
	return len(s) == 11 && strings.HasPrefix(s, "07") && allDigits(s)
}

// Valid accepts 10 or 11 digit UK numbers.
func Valid(s string) bool {
	return (len(s) == 10 || len(s) == 11) && strings.HasPrefix(s, "0") && allDigits(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
