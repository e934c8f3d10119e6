package domain

import (
	"regexp"
	"strings"

	dErrors "childminder/pkg/domain-errors"
)

// Postcode is a normalised UK postcode: upper case with a single space before
// the inward code ("SW1A 1AA").
type Postcode string

var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? [0-9][A-Z]{2}$`)

// ParsePostcode normalises spacing and case, then validates the UK format.
func ParsePostcode(s string) (Postcode, error) {
	compact := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if compact == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "please enter your postcode")
	}
	if len(compact) < 5 || len(compact) > 7 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "please enter a valid postcode")
	}
	formatted := compact[:len(compact)-3] + " " + compact[len(compact)-3:]
	if !postcodePattern.MatchString(formatted) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "please enter a valid postcode")
	}
	return Postcode(formatted), nil
}

func (p Postcode) String() string {
	return string(p)
}
