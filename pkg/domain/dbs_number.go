package domain

import (
	"strings"

	dErrors "childminder/pkg/domain-errors"
)

// DBSNumber is a Disclosure and Barring Service certificate number.
// Invariant: exactly 12 ASCII digits once parsed.
//
// Construct via ParseDBSNumber at trust boundaries; direct casting bypasses validation.
type DBSNumber string

const dbsNumberLength = 12

// ParseDBSNumber strips spaces and hyphens and checks the 12-digit format.
func ParseDBSNumber(s string) (DBSNumber, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "DBS certificate number cannot be empty")
	}
	if len(cleaned) != dbsNumberLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "DBS certificate number must be 12 digits long")
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "DBS certificate number must only contain digits")
		}
	}
	return DBSNumber(cleaned), nil
}

func (n DBSNumber) String() string {
	return string(n)
}

func (n DBSNumber) IsZero() bool {
	return n == ""
}
